// internal/api/leagues/handlers.go
package leagues

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
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/email"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/notify"
)

const (
	leagueQueryTimeout = 5 * time.Second
	leagueIDPathKey    = "id"
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

type leagueRequest struct {
	ClubID              int64  `json:"clubId"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	Format              string `json:"format"`
	PlayersPerDivision  int64  `json:"playersPerDivision"`
	DefaultTargetScore  int64  `json:"defaultTargetScore"`
	DefaultUseClock     bool   `json:"defaultUseClock"`
	StartDate           string `json:"startDate"`
	EndDate             string `json:"endDate"`
	RegistrationEndDate string `json:"registrationEndDate"`
	MastheadURL         string `json:"mastheadUrl"`
}

func (req *leagueRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	if !leagues.ValidFormat(req.Format) {
		return apiutil.FieldError{Field: "format", Reason: "must be round_robin, double_round_robin or swiss"}
	}
	if req.PlayersPerDivision < 2 {
		return apiutil.FieldError{Field: "playersPerDivision", Reason: "must be at least 2"}
	}
	if req.DefaultTargetScore < 1 {
		return apiutil.FieldError{Field: "defaultTargetScore", Reason: "must be at least 1"}
	}
	return nil
}

func leagueIDFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue(leagueIDPathKey), 10, 64)
}

// GET /api/v1/leagues
func HandleLeaguesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	var (
		list []appdb.League
		err  error
	)
	if clubParam := r.URL.Query().Get("club_id"); clubParam != "" {
		clubID, parseErr := strconv.ParseInt(clubParam, 10, 64)
		if parseErr != nil {
			http.Error(w, "Invalid club ID", http.StatusBadRequest)
			return
		}
		list, err = queries.ListLeaguesByClub(ctx, clubID)
	} else if status := r.URL.Query().Get("status"); status != "" {
		list, err = queries.ListLeaguesByStatus(ctx, status)
	} else {
		list, err = queries.ListLeaguesByStatus(ctx, leagues.StatusInProgress)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list leagues")
		http.Error(w, "Failed to list leagues", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"leagues": list}); err != nil {
		logger.Error().Err(err).Msg("Failed to write leagues response")
	}
}

// POST /api/v1/leagues
func HandleLeagueCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	startDate, err := apiutil.ParseNullDate(req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start date", http.StatusBadRequest)
		return
	}
	endDate, err := apiutil.ParseNullDate(req.EndDate)
	if err != nil {
		http.Error(w, "Invalid end date", http.StatusBadRequest)
		return
	}
	registrationEndDate, err := apiutil.ParseNullDate(req.RegistrationEndDate)
	if err != nil {
		http.Error(w, "Invalid registration end date", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.CreateLeague(ctx, appdb.CreateLeagueParams{
		ClubID:              req.ClubID,
		AdminMemberID:       user.ID,
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		Format:              req.Format,
		PlayersPerDivision:  req.PlayersPerDivision,
		DefaultTargetScore:  req.DefaultTargetScore,
		DefaultUseClock:     req.DefaultUseClock,
		StartDate:           startDate,
		EndDate:             endDate,
		RegistrationEndDate: registrationEndDate,
		MastheadURL:         req.MastheadURL,
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Msg("Failed to create league")
		http.Error(w, "Failed to create league", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, league); err != nil {
		logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to write league response")
	}
}

// GET /api/v1/leagues/{id}
func HandleLeagueDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to fetch league", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, league); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write league response")
	}
}

// PUT /api/v1/leagues/{id}
func HandleLeagueUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to fetch league", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireLeagueAdmin(w, r, league.AdminMemberID) {
		return
	}

	startDate, err := apiutil.ParseNullDate(req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start date", http.StatusBadRequest)
		return
	}
	endDate, err := apiutil.ParseNullDate(req.EndDate)
	if err != nil {
		http.Error(w, "Invalid end date", http.StatusBadRequest)
		return
	}
	registrationEndDate, err := apiutil.ParseNullDate(req.RegistrationEndDate)
	if err != nil {
		http.Error(w, "Invalid registration end date", http.StatusBadRequest)
		return
	}

	updated, err := queries.UpdateLeague(ctx, appdb.UpdateLeagueParams{
		ID:                  leagueID,
		Name:                strings.TrimSpace(req.Name),
		Description:         req.Description,
		Format:              req.Format,
		PlayersPerDivision:  req.PlayersPerDivision,
		DefaultTargetScore:  req.DefaultTargetScore,
		DefaultUseClock:     req.DefaultUseClock,
		StartDate:           startDate,
		EndDate:             endDate,
		RegistrationEndDate: registrationEndDate,
		MastheadURL:         req.MastheadURL,
	})
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update league")
		http.Error(w, "Failed to update league", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write league response")
	}
}

// DELETE /api/v1/leagues/{id}
func HandleLeagueDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to fetch league", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireLeagueAdmin(w, r, league.AdminMemberID) {
		return
	}

	// Children cascade via foreign keys.
	if err := queries.DeleteLeague(ctx, leagueID); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to delete league")
		http.Error(w, "Failed to delete league", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/leagues/{id}/registration/open
func HandleRegistrationOpen(w http.ResponseWriter, r *http.Request) {
	transitionLeague(w, r, leagues.StatusRegistrationOpen, nil)
}

// POST /api/v1/leagues/{id}/start
func HandleLeagueStart(w http.ResponseWriter, r *http.Request) {
	transitionLeague(w, r, leagues.StatusInProgress, func(ctx context.Context, league appdb.League) error {
		divisions, err := queries.ListDivisionsByLeague(ctx, league.ID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check divisions", Err: err}
		}
		if len(divisions) == 0 {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Divisions must be generated before starting"}
		}
		participants, err := queries.ListLeagueParticipants(ctx, league.ID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to check participants", Err: err}
		}
		if !leagues.HasEnoughParticipants(participants, league.PlayersPerDivision) {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Not enough active participants"}
		}
		return nil
	})
}

// transitionLeague applies a guarded status change with the optimistic
// version check. The precondition runs after the admin check and before
// any write.
func transitionLeague(w http.ResponseWriter, r *http.Request, target string, precondition func(context.Context, appdb.League) error) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to fetch league", http.StatusInternalServerError)
		return
	}
	if !apiutil.RequireLeagueAdmin(w, r, league.AdminMemberID) {
		return
	}

	if !leagues.CanTransitionLeague(league.Status, target) {
		http.Error(w, fmt.Sprintf("Cannot move league from %s to %s", league.Status, target), http.StatusBadRequest)
		return
	}
	if precondition != nil {
		if err := precondition(ctx, league); err != nil {
			apiutil.WriteHandlerError(w, r, err, "Failed to transition league")
			return
		}
	}

	updated, err := queries.UpdateLeagueStatus(ctx, appdb.UpdateLeagueStatusParams{
		ID:      leagueID,
		Status:  target,
		Version: league.Version,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League was modified concurrently, retry", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update league status")
		http.Error(w, "Failed to update league status", http.StatusInternalServerError)
		return
	}

	if target == leagues.StatusInProgress {
		notifyLeagueStarted(ctx, updated)
	}

	response := map[string]any{"league": updated}
	if target == leagues.StatusRegistrationOpen {
		participants, perr := queries.ListLeagueParticipants(ctx, leagueID)
		if perr == nil {
			response["hasEnoughParticipants"] = leagues.HasEnoughParticipants(participants, updated.PlayersPerDivision)
		}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, response); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write league response")
	}
}

// notifyLeagueStarted fans out in-app notifications plus best-effort
// emails to every active participant.
func notifyLeagueStarted(ctx context.Context, league appdb.League) {
	logger := log.Ctx(ctx)

	participants, err := queries.ListLeagueParticipants(ctx, league.ID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to list participants for start notifications")
		return
	}

	admin := notify.Party{ID: league.AdminMemberID}
	if member, err := queries.GetMember(ctx, league.AdminMemberID); err == nil {
		admin.Username = member.Username
	} else {
		logger.Error().Err(err).Int64("member_id", league.AdminMemberID).Msg("Failed to fetch league admin for start notifications")
	}
	for _, p := range leagues.ActiveParticipants(participants) {
		if p.MemberID == league.AdminMemberID {
			continue
		}
		recipient := notify.Party{ID: p.MemberID, Username: p.Username}
		if _, err := queries.CreateMessage(ctx, notify.LeagueStarted(admin, recipient, league.Name, league.ID)); err != nil {
			logger.Error().Err(err).Int64("member_id", p.MemberID).Msg("Failed to write league start notification")
			continue
		}
		message := email.BuildLeagueStartedEmail(email.LeagueStartedDetails{
			LeagueName:     league.Name,
			DivisionNumber: divisionNumberFor(ctx, p),
			Format:         league.Format,
		})
		email.SendMemberEmail(ctx, queries, emailSender, p.MemberID, message, logger)
	}
}

func divisionNumberFor(ctx context.Context, p appdb.LeagueParticipant) int64 {
	if !p.DivisionID.Valid {
		return 0
	}
	division, err := queries.GetDivision(ctx, p.DivisionID.Int64)
	if err != nil {
		return 0
	}
	return division.DivisionNumber
}

// GET /api/v1/leagues/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, err := queries.GetLeague(ctx, leagueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		http.Error(w, "Failed to fetch league", http.StatusInternalServerError)
		return
	}

	var (
		participants []appdb.LeagueParticipant
		matches      []appdb.LeagueMatch
	)
	if divisionParam := r.URL.Query().Get("division_id"); divisionParam != "" {
		divisionID, parseErr := strconv.ParseInt(divisionParam, 10, 64)
		if parseErr != nil {
			http.Error(w, "Invalid division ID", http.StatusBadRequest)
			return
		}
		participants, err = queries.ListDivisionParticipants(ctx, divisionID)
		if err == nil {
			matches, err = queries.ListDivisionMatches(ctx, divisionID)
		}
	} else {
		participants, err = queries.ListLeagueParticipants(ctx, leagueID)
		if err == nil {
			matches, err = queries.ListLeagueMatches(ctx, leagueID)
		}
	}
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to load standings inputs")
		http.Error(w, "Failed to load standings", http.StatusInternalServerError)
		return
	}

	standings := leagues.ComputeStandings(leagues.ActiveParticipants(participants), matches)
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"standings": standings}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write standings response")
	}
}

// GET /api/v1/leagues/{id}/matches
func HandleLeagueMatches(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	matches, err := queries.ListLeagueMatches(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list matches")
		http.Error(w, "Failed to list matches", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"matches": matches}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write matches response")
	}
}
