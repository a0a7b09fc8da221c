package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/testutil"
)

func seedLeagueWithMatches(t *testing.T, database *db.DB, matchStatuses []string) db.League {
	t.Helper()
	ctx := context.Background()

	admin, err := database.Queries.CreateMember(ctx, db.CreateMemberParams{
		Username: "admin", Email: "admin@test.com", PasswordHash: "x", IsAdmin: true,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	opponent, err := database.Queries.CreateMember(ctx, db.CreateMemberParams{
		Username: "opponent", Email: "opp@test.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create opponent: %v", err)
	}
	club, err := database.Queries.CreateClub(ctx, db.CreateClubParams{
		Name: "Test Club", Slug: "test-club", AdminMemberID: admin.ID,
	})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	league, err := database.Queries.CreateLeague(ctx, db.CreateLeagueParams{
		ClubID:             club.ID,
		AdminMemberID:      admin.ID,
		Name:               "Sweep League",
		Format:             leagues.FormatRoundRobin,
		PlayersPerDivision: 8,
		DefaultTargetScore: 5,
	})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}
	league, err = database.Queries.UpdateLeagueStatus(ctx, db.UpdateLeagueStatusParams{
		ID: league.ID, Status: leagues.StatusInProgress, Version: league.Version,
	})
	if err != nil {
		t.Fatalf("start league: %v", err)
	}
	division, err := database.Queries.CreateDivision(ctx, db.CreateDivisionParams{
		LeagueID: league.ID, Name: "Division 1", DivisionNumber: 1,
	})
	if err != nil {
		t.Fatalf("create division: %v", err)
	}

	for _, status := range matchStatuses {
		match, err := database.Queries.CreateLeagueMatch(ctx, db.CreateLeagueMatchParams{
			LeagueID:        league.ID,
			DivisionID:      division.ID,
			Player1ID:       admin.ID,
			Player1Username: admin.Username,
			Player2ID:       opponent.ID,
			Player2Username: opponent.Username,
			Status:          leagues.MatchStatusUnarranged,
			Leg:             1,
		})
		if err != nil {
			t.Fatalf("create match: %v", err)
		}
		if status == leagues.MatchStatusCompleted {
			_, err = database.Queries.RecordMatchResult(ctx, db.RecordMatchResultParams{
				ID:           match.ID,
				Status:       leagues.MatchStatusCompleted,
				Player1Score: 5,
				Player2Score: 2,
				WinnerID:     sql.NullInt64{Int64: admin.ID, Valid: true},
				ReportedBy:   admin.ID,
			})
			if err != nil {
				t.Fatalf("record result: %v", err)
			}
		}
	}
	return league
}

func TestSweepCompletedLeagues_AllMatchesDone(t *testing.T) {
	database := testutil.NewTestDB(t)
	league := seedLeagueWithMatches(t, database, []string{
		leagues.MatchStatusCompleted, leagues.MatchStatusCompleted,
	})

	SweepCompletedLeagues(context.Background(), database)

	got, err := database.Queries.GetLeague(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if got.Status != leagues.StatusCompleted {
		t.Fatalf("status = %q, want %q", got.Status, leagues.StatusCompleted)
	}
	if got.Version != league.Version+1 {
		t.Fatalf("version = %d, want %d", got.Version, league.Version+1)
	}
}

func TestSweepCompletedLeagues_IncompleteMatchBlocks(t *testing.T) {
	database := testutil.NewTestDB(t)
	league := seedLeagueWithMatches(t, database, []string{
		leagues.MatchStatusCompleted, leagues.MatchStatusUnarranged,
	})

	SweepCompletedLeagues(context.Background(), database)

	got, err := database.Queries.GetLeague(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	if got.Status != leagues.StatusInProgress {
		t.Fatalf("status = %q, want unchanged %q", got.Status, leagues.StatusInProgress)
	}
}

func TestSendMatchReminders_EmailsBothPlayers(t *testing.T) {
	database := testutil.NewTestDB(t)
	league := seedLeagueWithMatches(t, database, []string{leagues.MatchStatusUnarranged})

	ctx := context.Background()
	matches, err := database.Queries.ListLeagueMatches(ctx, league.ID)
	if err != nil || len(matches) != 1 {
		t.Fatalf("list matches: %v (%d)", err, len(matches))
	}
	scheduledAt := time.Now().UTC().Add(24*time.Hour + 10*time.Minute)
	if _, err := database.Queries.ScheduleMatch(ctx, db.ScheduleMatchParams{
		ID:          matches[0].ID,
		Status:      leagues.MatchStatusScheduled,
		ScheduledAt: scheduledAt,
	}); err != nil {
		t.Fatalf("schedule match: %v", err)
	}

	sender := &countingSender{sent: make(chan string, 4)}
	SendMatchReminders(ctx, database, sender, 24*time.Hour)

	recipients := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case r := <-sender.sent:
			recipients[r] = true
		case <-time.After(time.Second):
			t.Fatalf("expected 2 reminder emails, got %d", i)
		}
	}
	if !recipients["admin@test.com"] || !recipients["opp@test.com"] {
		t.Fatalf("recipients = %v", recipients)
	}
}

type countingSender struct {
	sent chan string
}

func (c *countingSender) Send(ctx context.Context, recipient, subject, body string) error {
	c.sent <- recipient
	return nil
}

func (c *countingSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	return c.Send(ctx, recipient, subject, body)
}
