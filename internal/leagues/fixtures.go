// internal/leagues/fixtures.go
package leagues

import (
	"errors"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

// League formats.
const (
	FormatRoundRobin       = "round_robin"
	FormatDoubleRoundRobin = "double_round_robin"
	FormatSwiss            = "swiss"
)

type Fixture struct {
	Round   int
	Leg     int
	Player1 db.LeagueParticipant
	Player2 db.LeagueParticipant
}

// BuildFixtures generates the fixture list for one division using the circle
// method. Every pair of participants meets exactly once per leg; the double
// round robin format adds a second leg with colors swapped.
func BuildFixtures(participants []db.LeagueParticipant, format string) ([]Fixture, error) {
	if len(participants) < 2 {
		return nil, errors.New("at least two participants are required")
	}

	firstLeg := buildRoundRobinPairs(participants)

	switch format {
	case FormatRoundRobin, FormatSwiss:
		// Swiss pairing is seeded from a full round robin fixture list for
		// small divisions; proper Swiss re-pairing between rounds is driven
		// by standings at arrangement time.
		return firstLeg, nil
	case FormatDoubleRoundRobin:
		fixtures := make([]Fixture, 0, len(firstLeg)*2)
		fixtures = append(fixtures, firstLeg...)
		rounds := roundCount(len(participants))
		for _, f := range firstLeg {
			fixtures = append(fixtures, Fixture{
				Round:   f.Round + rounds,
				Leg:     2,
				Player1: f.Player2,
				Player2: f.Player1,
			})
		}
		return fixtures, nil
	default:
		return nil, errors.New("unsupported league format: " + format)
	}
}

func roundCount(participantCount int) int {
	if participantCount%2 == 0 {
		return participantCount - 1
	}
	return participantCount
}

func buildRoundRobinPairs(participants []db.LeagueParticipant) []Fixture {
	working := make([]*db.LeagueParticipant, 0, len(participants)+1)
	for i := range participants {
		working = append(working, &participants[i])
	}
	if len(working)%2 == 1 {
		working = append(working, nil) // bye
	}

	rounds := len(working) - 1
	fixtures := make([]Fixture, 0, rounds*len(working)/2)

	for round := 0; round < rounds; round++ {
		for i := 0; i < len(working)/2; i++ {
			left := working[i]
			right := working[len(working)-1-i]
			if left == nil || right == nil {
				continue
			}
			player1 := *left
			player2 := *right
			if i == 0 && round%2 == 1 {
				player1, player2 = player2, player1
			}
			fixtures = append(fixtures, Fixture{
				Round:   round + 1,
				Leg:     1,
				Player1: player1,
				Player2: player2,
			})
		}
		rotateParticipants(working)
	}

	return fixtures
}

func rotateParticipants(participants []*db.LeagueParticipant) {
	if len(participants) <= 2 {
		return
	}
	last := participants[len(participants)-1]
	copy(participants[2:], participants[1:len(participants)-1])
	participants[1] = last
}
