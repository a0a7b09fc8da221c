// internal/api/matches/handlers.go
package matches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/email"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/notify"
)

const matchQueryTimeout = 5 * time.Second

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

func matchIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// loadMatchForParticipant fetches the match and checks that the current
// user plays in it.
func loadMatchForParticipant(ctx context.Context, w http.ResponseWriter, r *http.Request, user *authz.AuthUser) (appdb.LeagueMatch, bool) {
	logger := log.Ctx(r.Context())

	matchID, err := matchIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return appdb.LeagueMatch{}, false
	}

	match, err := queries.GetLeagueMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return appdb.LeagueMatch{}, false
		}
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to fetch match")
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return appdb.LeagueMatch{}, false
	}

	if user.ID != match.Player1ID && user.ID != match.Player2ID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return appdb.LeagueMatch{}, false
	}
	return match, true
}

type proposalRequest struct {
	ProposedTimes []time.Time `json:"proposedTimes"`
	Message       string      `json:"message"`
}

// POST /api/v1/matches/{id}/proposals
func HandleProposalCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req proposalRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := leagues.ValidateProposedTimes(req.ProposedTimes); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, ok := loadMatchForParticipant(ctx, w, r, user)
	if !ok {
		return
	}
	if match.Status != leagues.MatchStatusUnarranged {
		if _, err := queries.GetPendingProposalForMatch(ctx, match.ID); err == nil {
			http.Error(w, "A proposal is already pending for this match", http.StatusConflict)
			return
		}
		http.Error(w, leagues.ErrMatchNotOpen.Error(), http.StatusBadRequest)
		return
	}

	recipientID, recipientUsername := opponentOf(match, user.ID)
	league, err := queries.GetLeague(ctx, match.LeagueID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to fetch league for proposal")
		http.Error(w, "Failed to create proposal", http.StatusInternalServerError)
		return
	}

	var proposal appdb.MatchProposal
	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		created, err := tx.Queries.CreateMatchProposal(ctx, appdb.CreateMatchProposalParams{
			MatchID:           match.ID,
			ProposerID:        user.ID,
			ProposerUsername:  user.Username,
			RecipientID:       recipientID,
			RecipientUsername: recipientUsername,
			ProposedTimes:     req.ProposedTimes,
			CustomMessage:     req.Message,
		})
		if err != nil {
			return err
		}
		proposal = created

		// Marking the match keeps a second pending proposal out even
		// without the unique index.
		if _, err := tx.Queries.UpdateMatchStatus(ctx, appdb.UpdateMatchStatusParams{
			ID:         match.ID,
			Status:     leagues.MatchStatusArrangementProposed,
			FromStatus: leagues.MatchStatusUnarranged,
		}); err != nil {
			return fmt.Errorf("mark match proposed: %w", err)
		}

		proposer := notify.Party{ID: user.ID, Username: user.Username}
		recipient := notify.Party{ID: recipientID, Username: recipientUsername}
		_, err = tx.Queries.CreateMessage(ctx, notify.ProposalReceived(proposer, recipient, league.Name, match.ID, req.ProposedTimes))
		return err
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) || errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Match already has a pending proposal", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to create proposal")
		http.Error(w, "Failed to create proposal", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, proposal); err != nil {
		logger.Error().Err(err).Int64("proposal_id", proposal.ID).Msg("Failed to write proposal response")
	}
}

type proposalResponseRequest struct {
	Action       string     `json:"action"`
	SelectedTime *time.Time `json:"selectedTime"`
	Message      string     `json:"message"`
}

// POST /api/v1/proposals/{id}/respond
func HandleProposalRespond(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	proposalID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid proposal ID", http.StatusBadRequest)
		return
	}

	var req proposalResponseRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Action != "accept" && req.Action != "decline" {
		http.Error(w, "Action must be accept or decline", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	proposal, err := queries.GetMatchProposal(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Proposal not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("proposal_id", proposalID).Msg("Failed to fetch proposal")
		http.Error(w, "Failed to fetch proposal", http.StatusInternalServerError)
		return
	}
	if proposal.RecipientID != user.ID {
		http.Error(w, "Only the proposal recipient may respond", http.StatusForbidden)
		return
	}
	if proposal.Status != leagues.ProposalStatusPending {
		http.Error(w, leagues.ErrProposalResolved.Error(), http.StatusConflict)
		return
	}

	if req.Action == "accept" {
		if req.SelectedTime == nil {
			http.Error(w, "Selected time is required to accept", http.StatusBadRequest)
			return
		}
		if !leagues.ContainsTime(proposal.ProposedTimes, *req.SelectedTime) {
			http.Error(w, leagues.ErrTimeNotProposed.Error(), http.StatusBadRequest)
			return
		}
	}

	match, err := queries.GetLeagueMatch(ctx, proposal.MatchID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", proposal.MatchID).Msg("Failed to fetch match for proposal")
		http.Error(w, "Failed to respond to proposal", http.StatusInternalServerError)
		return
	}
	league, err := queries.GetLeague(ctx, match.LeagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", match.LeagueID).Msg("Failed to fetch league for proposal")
		http.Error(w, "Failed to respond to proposal", http.StatusInternalServerError)
		return
	}

	responder := notify.Party{ID: user.ID, Username: user.Username}
	proposer := notify.Party{ID: proposal.ProposerID, Username: proposal.ProposerUsername}

	var resolved appdb.MatchProposal
	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		if req.Action == "accept" {
			updated, err := tx.Queries.ResolveMatchProposal(ctx, appdb.ResolveMatchProposalParams{
				ID:           proposalID,
				Status:       leagues.ProposalStatusAccepted,
				AcceptedTime: apiutil.ToNullTime(req.SelectedTime),
			})
			if err != nil {
				return err
			}
			resolved = updated
			if _, err := tx.Queries.ScheduleMatch(ctx, appdb.ScheduleMatchParams{
				ID:          match.ID,
				Status:      leagues.MatchStatusScheduled,
				ScheduledAt: *req.SelectedTime,
			}); err != nil {
				return fmt.Errorf("schedule match: %w", err)
			}
			_, err = tx.Queries.CreateMessage(ctx, notify.ProposalAccepted(responder, proposer, league.Name, match.ID, *req.SelectedTime))
			return err
		}

		updated, err := tx.Queries.ResolveMatchProposal(ctx, appdb.ResolveMatchProposalParams{
			ID:     proposalID,
			Status: leagues.ProposalStatusDeclined,
		})
		if err != nil {
			return err
		}
		resolved = updated
		if _, err := tx.Queries.UpdateMatchStatus(ctx, appdb.UpdateMatchStatusParams{
			ID:         match.ID,
			Status:     leagues.MatchStatusUnarranged,
			FromStatus: leagues.MatchStatusArrangementProposed,
		}); err != nil {
			return fmt.Errorf("reopen match: %w", err)
		}
		_, err = tx.Queries.CreateMessage(ctx, notify.ProposalDeclined(responder, proposer, league.Name, match.ID, req.Message))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, leagues.ErrProposalResolved.Error(), http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("proposal_id", proposalID).Msg("Failed to resolve proposal")
		http.Error(w, "Failed to respond to proposal", http.StatusInternalServerError)
		return
	}

	if req.Action == "accept" {
		opponentID, opponentUsername := opponentOf(match, user.ID)
		message := email.BuildMatchScheduledEmail(email.MatchScheduledDetails{
			LeagueName:   league.Name,
			OpponentName: user.Username,
			ScheduledAt:  *req.SelectedTime,
		})
		email.SendMemberEmail(ctx, queries, emailSender, opponentID, message, logger)
		message = email.BuildMatchScheduledEmail(email.MatchScheduledDetails{
			LeagueName:   league.Name,
			OpponentName: opponentUsername,
			ScheduledAt:  *req.SelectedTime,
		})
		email.SendMemberEmail(ctx, queries, emailSender, user.ID, message, logger)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, resolved); err != nil {
		logger.Error().Err(err).Int64("proposal_id", proposalID).Msg("Failed to write proposal response")
	}
}

// GET /api/v1/matches/{id}/proposals
func HandleProposalsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, ok := loadMatchForParticipant(ctx, w, r, user)
	if !ok {
		return
	}

	proposals, err := queries.ListProposalsForMatch(ctx, match.ID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to list proposals")
		http.Error(w, "Failed to list proposals", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"proposals": proposals}); err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to write proposals response")
	}
}

type resultRequest struct {
	Player1Score int64 `json:"player1Score"`
	Player2Score int64 `json:"player2Score"`
}

// POST /api/v1/matches/{id}/result
func HandleResultReport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := leagues.ValidateScores(req.Player1Score, req.Player2Score); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, ok := loadMatchForParticipant(ctx, w, r, user)
	if !ok {
		return
	}
	if !leagues.CanTransitionMatch(match.Status, leagues.MatchStatusCompleted) {
		http.Error(w, fmt.Sprintf("Cannot report a result for a %s match", match.Status), http.StatusBadRequest)
		return
	}

	winner := leagues.ComputeWinner(match.Player1ID, match.Player2ID, req.Player1Score, req.Player2Score)
	updated, err := queries.RecordMatchResult(ctx, appdb.RecordMatchResultParams{
		ID:           match.ID,
		Status:       leagues.MatchStatusCompleted,
		Player1Score: req.Player1Score,
		Player2Score: req.Player2Score,
		WinnerID:     winner,
		ReportedBy:   user.ID,
	})
	if err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to record result")
		http.Error(w, "Failed to record result", http.StatusInternalServerError)
		return
	}

	notifyResultReported(ctx, updated, user)

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to write result response")
	}
}

func notifyResultReported(ctx context.Context, match appdb.LeagueMatch, user *authz.AuthUser) {
	logger := log.Ctx(ctx)

	league, err := queries.GetLeague(ctx, match.LeagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", match.LeagueID).Msg("Failed to fetch league for result notification")
		return
	}

	opponentID, opponentUsername := opponentOf(match, user.ID)
	reporterScore, opponentScore := match.Player1Score.Int64, match.Player2Score.Int64
	if user.ID == match.Player2ID {
		reporterScore, opponentScore = opponentScore, reporterScore
	}

	reporter := notify.Party{ID: user.ID, Username: user.Username}
	opponent := notify.Party{ID: opponentID, Username: opponentUsername}
	if _, err := queries.CreateMessage(ctx, notify.ResultReported(reporter, opponent, league.Name, match.ID, reporterScore, opponentScore)); err != nil {
		logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to write result notification")
	}
}

// POST /api/v1/matches/{id}/reset
//
// Admin fix-up for a wrongly reported result. Clears scores and winner
// and returns the match to unarranged.
func HandleMatchReset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	matchID, err := matchIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid match ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := queries.GetLeagueMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Match not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to fetch match")
		http.Error(w, "Failed to fetch match", http.StatusInternalServerError)
		return
	}

	league, err := queries.GetLeague(ctx, match.LeagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", match.LeagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to reset match", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireLeagueAdmin(w, r, league.AdminMemberID) {
		return
	}

	updated, err := queries.ResetMatch(ctx, matchID)
	if err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to reset match")
		http.Error(w, "Failed to reset match", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("match_id", matchID).Msg("Match reset by admin")
	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("match_id", matchID).Msg("Failed to write match response")
	}
}

func opponentOf(match appdb.LeagueMatch, memberID int64) (int64, string) {
	if memberID == match.Player1ID {
		return match.Player2ID, match.Player2Username
	}
	return match.Player1ID, match.Player1Username
}
