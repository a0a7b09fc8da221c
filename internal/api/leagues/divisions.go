// internal/api/leagues/divisions.go
package leagues

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
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
)

const divisionGenerateTimeout = 30 * time.Second

// POST /api/v1/leagues/{id}/divisions/generate
//
// Regenerates divisions and fixtures from scratch. Only valid while
// registration is open, so no results can be lost.
func HandleDivisionsGenerate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), divisionGenerateTimeout)
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
	if league.Status != leagues.StatusRegistrationOpen {
		http.Error(w, "Divisions can only be generated while registration is open", http.StatusBadRequest)
		return
	}

	participants, err := queries.ListLeagueParticipants(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list participants")
		http.Error(w, "Failed to list participants", http.StatusInternalServerError)
		return
	}

	plans, err := leagues.PlanDivisions(participants, league.PlayersPerDivision)
	if err != nil {
		if errors.Is(err, leagues.ErrNotEnoughParticipants) {
			http.Error(w, "Not enough active participants", http.StatusBadRequest)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to plan divisions")
		http.Error(w, "Failed to plan divisions", http.StatusInternalServerError)
		return
	}

	var created []appdb.Division
	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		if err := tx.Queries.DeleteLeagueMatchesByLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}
		if err := tx.Queries.ClearParticipantDivisions(ctx, leagueID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if err := tx.Queries.DeleteDivisionsByLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("clear divisions: %w", err)
		}

		for _, plan := range plans {
			division, err := tx.Queries.CreateDivision(ctx, appdb.CreateDivisionParams{
				LeagueID:       leagueID,
				Name:           plan.Name,
				DivisionNumber: plan.Number,
			})
			if err != nil {
				return fmt.Errorf("create division %d: %w", plan.Number, err)
			}
			for _, p := range plan.Participants {
				if err := tx.Queries.AssignParticipantDivision(ctx, p.ID, division.ID); err != nil {
					return fmt.Errorf("assign participant %d: %w", p.ID, err)
				}
			}

			fixtures, err := leagues.BuildFixtures(plan.Participants, league.Format)
			if err != nil {
				return fmt.Errorf("build fixtures for division %d: %w", plan.Number, err)
			}
			for _, fixture := range fixtures {
				_, err := tx.Queries.CreateLeagueMatch(ctx, appdb.CreateLeagueMatchParams{
					LeagueID:        leagueID,
					DivisionID:      division.ID,
					Player1ID:       fixture.Player1.MemberID,
					Player1Username: fixture.Player1.Username,
					Player2ID:       fixture.Player2.MemberID,
					Player2Username: fixture.Player2.Username,
					Status:          leagues.MatchStatusUnarranged,
					Leg:             int64(fixture.Leg),
				})
				if err != nil {
					return fmt.Errorf("create match: %w", err)
				}
			}
			created = append(created, division)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to generate divisions")
		http.Error(w, "Failed to generate divisions", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("league_id", leagueID).Int("divisions", len(created)).Msg("Divisions generated")
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"divisions": created}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write divisions response")
	}
}

// POST /api/v1/leagues/{id}/reset
//
// Destructive: drops all matches, proposals and divisions and reopens
// registration.
func HandleLeagueReset(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), divisionGenerateTimeout)
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
	if league.Status == leagues.StatusDraft {
		http.Error(w, "League has not opened registration yet", http.StatusBadRequest)
		return
	}

	err = database.RunInTx(ctx, func(tx *appdb.DB) error {
		if err := tx.Queries.DeleteLeagueMatchesByLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}
		if err := tx.Queries.ClearParticipantDivisions(ctx, leagueID); err != nil {
			return fmt.Errorf("clear assignments: %w", err)
		}
		if err := tx.Queries.DeleteDivisionsByLeague(ctx, leagueID); err != nil {
			return fmt.Errorf("clear divisions: %w", err)
		}
		_, err := tx.Queries.UpdateLeagueStatus(ctx, appdb.UpdateLeagueStatusParams{
			ID:      leagueID,
			Status:  leagues.StatusRegistrationOpen,
			Version: league.Version,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "League was modified concurrently, retry", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to reset league")
		http.Error(w, "Failed to reset league", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("league_id", leagueID).Msg("League reset")
	updated, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to reload league")
		http.Error(w, "Failed to reload league", http.StatusInternalServerError)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"league": updated}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write league response")
	}
}

// GET /api/v1/leagues/{id}/participants
func HandleParticipantsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	participants, err := queries.ListLeagueParticipants(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list participants")
		http.Error(w, "Failed to list participants", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"participants": participants}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write participants response")
	}
}

// POST /api/v1/leagues/{id}/participants
//
// The current user registers for the league.
func HandleParticipantRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

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
	if league.Status != leagues.StatusRegistrationOpen {
		http.Error(w, "Registration is not open", http.StatusBadRequest)
		return
	}

	participant, err := queries.CreateLeagueParticipant(ctx, appdb.CreateLeagueParticipantParams{
		LeagueID: leagueID,
		MemberID: user.ID,
		Username: user.Username,
		Status:   leagues.ParticipantStatusActive,
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			http.Error(w, "Already registered", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to register participant")
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, participant); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write participant response")
	}
}

// POST /api/v1/leagues/{id}/participants/{participant_id}/activate
func HandleParticipantActivate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := leagueIDFromRequest(r)
	if err != nil {
		http.Error(w, "Invalid league ID", http.StatusBadRequest)
		return
	}
	participantID, err := strconv.ParseInt(r.PathValue("participant_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid participant ID", http.StatusBadRequest)
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

	participant, err := queries.GetLeagueParticipant(ctx, participantID)
	if err != nil || participant.LeagueID != leagueID {
		http.Error(w, "Participant not found", http.StatusNotFound)
		return
	}

	updated, err := queries.UpdateParticipantStatus(ctx, participantID, leagues.ParticipantStatusActive)
	if err != nil {
		logger.Error().Err(err).Int64("participant_id", participantID).Msg("Failed to activate participant")
		http.Error(w, "Failed to activate participant", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("participant_id", participantID).Msg("Failed to write participant response")
	}
}
