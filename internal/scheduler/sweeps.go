package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/config"
	"github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/email"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
)

const (
	sweepTimeout      = 2 * time.Minute
	reminderJobWindow = time.Hour
)

// RegisterLeagueJobs registers the league completion sweep and the
// scheduled-match reminder job.
func RegisterLeagueJobs(svc *Service, database *db.DB, sender email.EmailSender, cfg *config.Config) error {
	if database == nil {
		return fmt.Errorf("league jobs require database")
	}

	if _, err := svc.AddJob("league_completion_sweep", cfg.Leagues.CompletionSweepCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		SweepCompletedLeagues(ctx, database)
	}); err != nil {
		return fmt.Errorf("register completion sweep: %w", err)
	}

	leadHours := cfg.Leagues.ReminderLeadHours
	if leadHours <= 0 {
		leadHours = 24
	}
	if _, err := svc.AddJob("match_reminders", cfg.Leagues.ReminderCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		SendMatchReminders(ctx, database, sender, time.Duration(leadHours)*time.Hour)
	}); err != nil {
		return fmt.Errorf("register match reminders: %w", err)
	}

	return nil
}

// SweepCompletedLeagues marks in-progress leagues completed once every
// division match has a recorded result.
func SweepCompletedLeagues(ctx context.Context, database *db.DB) {
	logger := log.With().Str("component", "league_completion_sweep").Logger()
	ctx = logger.WithContext(ctx)

	active, err := database.Queries.ListLeaguesByStatus(ctx, leagues.StatusInProgress)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list in-progress leagues")
		return
	}

	for _, league := range active {
		remaining, err := database.Queries.CountIncompleteMatches(ctx, league.ID)
		if err != nil {
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to count incomplete matches")
			continue
		}
		if remaining > 0 {
			continue
		}

		_, err = database.Queries.UpdateLeagueStatus(ctx, db.UpdateLeagueStatusParams{
			ID:      league.ID,
			Status:  leagues.StatusCompleted,
			Version: league.Version,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Lost the version race; the next sweep will retry.
				continue
			}
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to complete league")
			continue
		}
		logger.Info().Int64("league_id", league.ID).Str("name", league.Name).Msg("League completed")
	}
}

// SendMatchReminders emails both players of matches starting within the
// reminder window.
func SendMatchReminders(ctx context.Context, database *db.DB, sender email.EmailSender, lead time.Duration) {
	logger := log.With().Str("component", "match_reminders").Logger()
	ctx = logger.WithContext(ctx)

	if sender == nil {
		logger.Debug().Msg("Reminder job skipped: email sender not configured")
		return
	}

	windowStart := time.Now().UTC().Add(lead)
	windowEnd := windowStart.Add(reminderJobWindow)

	matches, err := database.Queries.ListScheduledMatchesBetween(ctx, windowStart, windowEnd)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list scheduled matches for reminders")
		return
	}

	for _, match := range matches {
		league, err := database.Queries.GetLeague(ctx, match.LeagueID)
		if err != nil {
			logger.Error().Err(err).Int64("match_id", match.ID).Msg("Failed to load league for reminder")
			continue
		}

		for _, side := range []struct {
			memberID int64
			opponent string
		}{
			{match.Player1ID, match.Player2Username},
			{match.Player2ID, match.Player1Username},
		} {
			message := email.BuildMatchReminderEmail(email.MatchReminderDetails{
				LeagueName:   league.Name,
				OpponentName: side.opponent,
				ScheduledAt:  match.ScheduledAt.Time,
			})
			email.SendMemberEmail(ctx, database.Queries, sender, side.memberID, message, &logger)
		}
	}
}
