// internal/api/invitations/handlers.go
package invitations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/email"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/notify"
)

const (
	invitationQueryTimeout = 5 * time.Second

	InviteTypeLeague = "league"
	InviteTypeClub   = "club"
)

var (
	database    *appdb.DB
	queries     *appdb.Queries
	emailSender email.EmailSender
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, sender email.EmailSender) {
	if db == nil {
		return
	}
	database = db
	queries = db.Queries
	emailSender = sender
}

type invitationRequest struct {
	InviteType string `json:"inviteType"`
	EntityID   int64  `json:"entityId"`
	Username   string `json:"username"`
	Note       string `json:"note"`
}

func (req *invitationRequest) validate() error {
	if req.InviteType != InviteTypeLeague && req.InviteType != InviteTypeClub {
		return apiutil.FieldError{Field: "inviteType", Reason: "must be league or club"}
	}
	if req.EntityID <= 0 {
		return apiutil.FieldError{Field: "entityId", Reason: "is required"}
	}
	if strings.TrimSpace(req.Username) == "" {
		return apiutil.FieldError{Field: "username", Reason: "is required"}
	}
	return nil
}

// entityNameAndAdmin resolves the invited-to entity, returning its
// display name and the member allowed to send invitations for it.
func entityNameAndAdmin(ctx context.Context, inviteType string, entityID int64) (string, int64, error) {
	switch inviteType {
	case InviteTypeLeague:
		league, err := queries.GetLeague(ctx, entityID)
		if err != nil {
			return "", 0, err
		}
		return league.Name, league.AdminMemberID, nil
	case InviteTypeClub:
		club, err := queries.GetClub(ctx, entityID)
		if err != nil {
			return "", 0, err
		}
		return club.Name, club.AdminMemberID, nil
	}
	return "", 0, fmt.Errorf("unknown invite type %q", inviteType)
}

// createInvitation runs the shared create path: duplicate check,
// invitation + notification in one transaction, then a best-effort
// email. Used by both the single and bulk endpoints.
func createInvitation(ctx context.Context, user *authz.AuthUser, req invitationRequest) (appdb.Invitation, error) {
	entityName, adminID, err := entityNameAndAdmin(ctx, req.InviteType, req.EntityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Entity not found"}
		}
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to resolve entity", Err: err}
	}
	if err := authz.RequireLeagueAdmin(ctx, adminID); err != nil {
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusForbidden, Message: "Only the admin may send invitations"}
	}

	invitee, err := queries.GetMemberByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: fmt.Sprintf("Member %q not found", req.Username)}
		}
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to look up member", Err: err}
	}

	if _, err := queries.GetPendingInvitation(ctx, req.InviteType, req.EntityID, invitee.ID); err == nil {
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusConflict, Message: "Member already has a pending invitation"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check invitations", Err: err}
	}

	var invitation appdb.Invitation
	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		created, err := tx.Queries.CreateInvitation(ctx, appdb.CreateInvitationParams{
			InviteType:      req.InviteType,
			EntityID:        req.EntityID,
			InviterID:       user.ID,
			InviterUsername: user.Username,
			InviteeID:       invitee.ID,
			InviteeUsername: invitee.Username,
			Note:            req.Note,
		})
		if err != nil {
			return err
		}
		invitation = created

		inviter := notify.Party{ID: user.ID, Username: user.Username}
		recipient := notify.Party{ID: invitee.ID, Username: invitee.Username}
		_, err = tx.Queries.CreateMessage(ctx, notify.InvitationReceived(inviter, recipient, req.InviteType, entityName, created.ID))
		return err
	})
	if err != nil {
		return appdb.Invitation{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to create invitation", Err: err}
	}

	message := email.BuildInvitationEmail(email.InvitationDetails{
		InviterName: user.Username,
		InviteType:  req.InviteType,
		EntityName:  entityName,
		Note:        req.Note,
	})
	email.SendMemberEmail(ctx, queries, emailSender, invitee.ID, message, log.Ctx(ctx))

	return invitation, nil
}

// POST /api/v1/invitations
func HandleInvitationCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req invitationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitationQueryTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx)

	invitation, err := createInvitation(ctx, user, req)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err, "Failed to create invitation")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, invitation); err != nil {
		logger.Error().Err(err).Int64("invitation_id", invitation.ID).Msg("Failed to write invitation response")
	}
}

type bulkInvitationRequest struct {
	InviteType string   `json:"inviteType"`
	EntityID   int64    `json:"entityId"`
	Usernames  []string `json:"usernames"`
	Note       string   `json:"note"`
}

type bulkInvitationResult struct {
	Username   string            `json:"username"`
	Ok         bool              `json:"ok"`
	Error      string            `json:"error,omitempty"`
	Invitation *appdb.Invitation `json:"invitation,omitempty"`
}

// POST /api/v1/invitations/bulk
//
// Invites every listed username, collecting per-recipient outcomes
// instead of failing the batch on the first error.
func HandleInvitationBulk(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req bulkInvitationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Usernames) == 0 {
		http.Error(w, "At least one username is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitationQueryTimeout*time.Duration(len(req.Usernames)))
	defer cancel()
	ctx = logger.WithContext(ctx)

	results := make([]bulkInvitationResult, 0, len(req.Usernames))
	for _, username := range req.Usernames {
		single := invitationRequest{
			InviteType: req.InviteType,
			EntityID:   req.EntityID,
			Username:   username,
			Note:       req.Note,
		}
		if err := single.validate(); err != nil {
			results = append(results, bulkInvitationResult{Username: username, Error: err.Error()})
			continue
		}
		invitation, err := createInvitation(ctx, user, single)
		if err != nil {
			results = append(results, bulkInvitationResult{Username: username, Error: err.Error()})
			continue
		}
		results = append(results, bulkInvitationResult{Username: username, Ok: true, Invitation: &invitation})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"results": results}); err != nil {
		logger.Error().Err(err).Msg("Failed to write bulk invitation response")
	}
}

type invitationResponseRequest struct {
	Action string `json:"action"`
}

// POST /api/v1/invitations/{id}/respond
func HandleInvitationRespond(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	invitationID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid invitation ID", http.StatusBadRequest)
		return
	}

	var req invitationResponseRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Action != "accept" && req.Action != "decline" {
		http.Error(w, "Action must be accept or decline", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitationQueryTimeout)
	defer cancel()

	invitation, err := queries.GetInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Invitation not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("invitation_id", invitationID).Msg("Failed to fetch invitation")
		http.Error(w, "Failed to fetch invitation", http.StatusInternalServerError)
		return
	}
	if invitation.InviteeID != user.ID {
		http.Error(w, "Only the invitee may respond", http.StatusForbidden)
		return
	}
	if invitation.Status != "pending" {
		http.Error(w, "Invitation already resolved", http.StatusConflict)
		return
	}

	entityName, _, err := entityNameAndAdmin(ctx, invitation.InviteType, invitation.EntityID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Int64("invitation_id", invitationID).Msg("Failed to resolve entity")
		http.Error(w, "Failed to respond to invitation", http.StatusInternalServerError)
		return
	}

	status := "declined"
	if req.Action == "accept" {
		status = "accepted"
	}

	var resolved appdb.Invitation
	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		updated, err := tx.Queries.ResolveInvitation(ctx, invitationID, status)
		if err != nil {
			return err
		}
		resolved = updated

		if status == "accepted" && invitation.InviteType == InviteTypeLeague {
			_, err := tx.Queries.CreateLeagueParticipant(ctx, appdb.CreateLeagueParticipantParams{
				LeagueID: invitation.EntityID,
				MemberID: user.ID,
				Username: user.Username,
				Status:   leagues.ParticipantStatusRegistered,
			})
			if err != nil && !apiutil.IsSQLiteConstraintViolation(err) {
				return fmt.Errorf("register participant: %w", err)
			}
		}

		invitee := notify.Party{ID: user.ID, Username: user.Username}
		inviter := notify.Party{ID: invitation.InviterID, Username: invitation.InviterUsername}
		_, err = tx.Queries.CreateMessage(ctx, notify.InvitationResolved(invitee, inviter, invitation.InviteType, entityName, status, invitationID))
		return err
	})
	if err != nil {
		logger.Error().Err(err).Int64("invitation_id", invitationID).Msg("Failed to resolve invitation")
		http.Error(w, "Failed to respond to invitation", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resolved); err != nil {
		logger.Error().Err(err).Int64("invitation_id", invitationID).Msg("Failed to write invitation response")
	}
}

// GET /api/v1/invitations
func HandleInvitationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitationQueryTimeout)
	defer cancel()

	invitations, err := queries.ListInvitationsForInvitee(ctx, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to list invitations")
		http.Error(w, "Failed to list invitations", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"invitations": invitations}); err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to write invitations response")
	}
}
