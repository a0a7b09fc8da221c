// internal/leagues/standings.go
package leagues

import (
	"sort"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const (
	pointsPerWin  = 3
	pointsPerDraw = 1
)

type StandingRow struct {
	MemberID         int64  `json:"memberId"`
	Username         string `json:"username"`
	MatchesPlayed    int    `json:"matchesPlayed"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	Draws            int    `json:"draws"`
	Points           int    `json:"points"`
	PointsFor        int    `json:"pointsFor"`
	PointsAgainst    int    `json:"pointsAgainst"`
	PointsDifference int    `json:"pointsDifference"`
}

// ComputeStandings builds the ranked table for one division. Only completed
// matches involving the given participants count. Ordering is points, then
// points difference, then points for; rows still tied after all three keys
// keep participant input order.
func ComputeStandings(participants []db.LeagueParticipant, matches []db.LeagueMatch) []StandingRow {
	rows := make([]StandingRow, 0, len(participants))
	for _, p := range participants {
		row := StandingRow{
			MemberID: p.MemberID,
			Username: p.Username,
		}
		for _, m := range matches {
			if m.Status != MatchStatusCompleted {
				continue
			}
			if m.Player1ID != p.MemberID && m.Player2ID != p.MemberID {
				continue
			}
			own, opponent := int(m.Player1Score.Int64), int(m.Player2Score.Int64)
			if m.Player2ID == p.MemberID {
				own, opponent = opponent, own
			}

			row.MatchesPlayed++
			row.PointsFor += own
			row.PointsAgainst += opponent

			switch {
			case m.WinnerID.Valid && m.WinnerID.Int64 == p.MemberID:
				row.Wins++
			case !m.WinnerID.Valid:
				row.Draws++
			default:
				row.Losses++
			}
		}
		row.Points = row.Wins*pointsPerWin + row.Draws*pointsPerDraw
		row.PointsDifference = row.PointsFor - row.PointsAgainst
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].PointsDifference != rows[j].PointsDifference {
			return rows[i].PointsDifference > rows[j].PointsDifference
		}
		return rows[i].PointsFor > rows[j].PointsFor
	})

	return rows
}
