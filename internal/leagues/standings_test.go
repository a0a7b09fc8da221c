package leagues

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

func participant(memberID int64, username string) db.LeagueParticipant {
	return db.LeagueParticipant{
		MemberID: memberID,
		Username: username,
		Status:   ParticipantStatusActive,
	}
}

func completedMatch(p1, p2, s1, s2 int64) db.LeagueMatch {
	m := db.LeagueMatch{
		Player1ID:    p1,
		Player2ID:    p2,
		Status:       MatchStatusCompleted,
		Player1Score: sql.NullInt64{Int64: s1, Valid: true},
		Player2Score: sql.NullInt64{Int64: s2, Valid: true},
	}
	m.WinnerID = ComputeWinner(p1, p2, s1, s2)
	return m
}

func TestComputeStandings_ScenarioThreePlayers(t *testing.T) {
	alice := participant(1, "alice")
	bob := participant(2, "bob")
	carol := participant(3, "carol")

	matches := []db.LeagueMatch{
		completedMatch(1, 2, 5, 2), // Alice beats Bob 5-2
		completedMatch(2, 3, 5, 1), // Bob beats Carol 5-1
		{Player1ID: 1, Player2ID: 3, Status: MatchStatusUnarranged},
	}

	rows := ComputeStandings([]db.LeagueParticipant{alice, bob, carol}, matches)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Alice and Bob both have 3 points; Alice ranks above on points difference.
	if rows[0].Username != "alice" {
		t.Fatalf("rank 1: %s", rows[0].Username)
	}
	if rows[0].MatchesPlayed != 1 || rows[0].Wins != 1 || rows[0].Points != 3 || rows[0].PointsDifference != 3 {
		t.Fatalf("alice row: %+v", rows[0])
	}
	if rows[1].Username != "bob" {
		t.Fatalf("rank 2: %s", rows[1].Username)
	}
	if rows[1].MatchesPlayed != 2 || rows[1].Wins != 1 || rows[1].Losses != 1 || rows[1].Points != 3 || rows[1].PointsDifference != 0 {
		t.Fatalf("bob row: %+v", rows[1])
	}
	if rows[2].Username != "carol" {
		t.Fatalf("rank 3: %s", rows[2].Username)
	}
	if rows[2].MatchesPlayed != 1 || rows[2].Losses != 1 || rows[2].Points != 0 || rows[2].PointsDifference != -4 {
		t.Fatalf("carol row: %+v", rows[2])
	}
}

func TestComputeStandings_Deterministic(t *testing.T) {
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
		participant(3, "carol"), participant(4, "dave"),
	}
	matches := []db.LeagueMatch{
		completedMatch(1, 2, 7, 4),
		completedMatch(3, 4, 7, 6),
		completedMatch(1, 3, 2, 7),
		completedMatch(2, 4, 5, 5), // draw
	}

	first := ComputeStandings(participants, matches)
	for i := 0; i < 10; i++ {
		again := ComputeStandings(participants, matches)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %+v vs %+v", i, first, again)
		}
	}
}

func TestComputeStandings_PointsLaw(t *testing.T) {
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
		participant(3, "carol"),
	}
	matches := []db.LeagueMatch{
		completedMatch(1, 2, 7, 4),
		completedMatch(2, 3, 3, 3),
		completedMatch(1, 3, 1, 7),
	}

	for _, row := range ComputeStandings(participants, matches) {
		if row.Points != row.Wins*3+row.Draws {
			t.Fatalf("%s: points %d wins %d draws %d", row.Username, row.Points, row.Wins, row.Draws)
		}
		if row.Losses != row.MatchesPlayed-row.Wins-row.Draws {
			t.Fatalf("%s: losses %d played %d wins %d draws %d", row.Username, row.Losses, row.MatchesPlayed, row.Wins, row.Draws)
		}
		if row.Losses < 0 {
			t.Fatalf("%s: negative losses", row.Username)
		}
	}
}

func TestComputeStandings_SortByPointsFirst(t *testing.T) {
	// Bob has a huge points difference but fewer points than Alice.
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
		participant(3, "carol"), participant(4, "dave"),
	}
	matches := []db.LeagueMatch{
		completedMatch(1, 3, 7, 6),
		completedMatch(1, 4, 7, 6),
		completedMatch(2, 3, 11, 0),
	}

	rows := ComputeStandings(participants, matches)
	if rows[0].Username != "alice" || rows[0].Points != 6 {
		t.Fatalf("rank 1: %+v", rows[0])
	}
	if rows[1].Username != "bob" || rows[1].Points != 3 {
		t.Fatalf("rank 2: %+v", rows[1])
	}
}

func TestComputeStandings_TiebreakByPointsFor(t *testing.T) {
	// Same points, same difference; higher points-for wins the tiebreak.
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
		participant(3, "carol"), participant(4, "dave"),
	}
	matches := []db.LeagueMatch{
		completedMatch(1, 3, 3, 1), // alice +2, PF 3
		completedMatch(2, 4, 7, 5), // bob +2, PF 7
	}

	rows := ComputeStandings(participants, matches)
	if rows[0].Username != "bob" {
		t.Fatalf("rank 1: %s", rows[0].Username)
	}
	if rows[1].Username != "alice" {
		t.Fatalf("rank 2: %s", rows[1].Username)
	}
}

func TestComputeStandings_StableOnFullTie(t *testing.T) {
	// No completed matches: all rows identical, input order preserved.
	participants := []db.LeagueParticipant{
		participant(9, "zoe"), participant(4, "abe"), participant(7, "mia"),
	}

	rows := ComputeStandings(participants, nil)
	if rows[0].Username != "zoe" || rows[1].Username != "abe" || rows[2].Username != "mia" {
		t.Fatalf("order changed: %+v", rows)
	}
}

func TestComputeStandings_DrawCounts(t *testing.T) {
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
	}
	matches := []db.LeagueMatch{
		completedMatch(1, 2, 3, 3),
	}

	rows := ComputeStandings(participants, matches)
	for _, row := range rows {
		if row.Draws != 1 || row.Points != 1 || row.Wins != 0 || row.Losses != 0 {
			t.Fatalf("%s: %+v", row.Username, row)
		}
	}
}

func TestComputeStandings_IgnoresUnfinishedMatches(t *testing.T) {
	participants := []db.LeagueParticipant{
		participant(1, "alice"), participant(2, "bob"),
	}
	matches := []db.LeagueMatch{
		{Player1ID: 1, Player2ID: 2, Status: MatchStatusScheduled},
		{Player1ID: 1, Player2ID: 2, Status: MatchStatusArrangementProposed},
	}

	rows := ComputeStandings(participants, matches)
	for _, row := range rows {
		if row.MatchesPlayed != 0 {
			t.Fatalf("%s counted unfinished matches: %+v", row.Username, row)
		}
	}
}
