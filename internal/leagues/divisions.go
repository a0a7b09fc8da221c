// internal/leagues/divisions.go
package leagues

import (
	"errors"
	"fmt"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

// Participant statuses.
const (
	ParticipantStatusInvited    = "invited"
	ParticipantStatusRegistered = "registered"
	ParticipantStatusActive     = "active"
)

var ErrNotEnoughParticipants = errors.New("not enough active participants")

type DivisionPlan struct {
	Name         string
	Number       int64
	Participants []db.LeagueParticipant
}

// ActiveParticipants filters to participants who count toward division
// generation and standings eligibility.
func ActiveParticipants(participants []db.LeagueParticipant) []db.LeagueParticipant {
	active := make([]db.LeagueParticipant, 0, len(participants))
	for _, p := range participants {
		if p.Status == ParticipantStatusActive {
			active = append(active, p)
		}
	}
	return active
}

// HasEnoughParticipants reports whether the active participant count can fill
// at least one division.
func HasEnoughParticipants(participants []db.LeagueParticipant, playersPerDivision int64) bool {
	return int64(len(ActiveParticipants(participants))) >= playersPerDivision
}

// PlanDivisions partitions active participants into balanced divisions of
// roughly playersPerDivision members. Division sizes differ by at most one
// and every division holds at least two participants. Input order decides
// assignment, so callers control seeding by ordering the slice.
func PlanDivisions(participants []db.LeagueParticipant, playersPerDivision int64) ([]DivisionPlan, error) {
	if playersPerDivision < 2 {
		return nil, errors.New("players per division must be at least 2")
	}
	active := ActiveParticipants(participants)
	if int64(len(active)) < playersPerDivision {
		return nil, ErrNotEnoughParticipants
	}

	divisionCount := len(active) / int(playersPerDivision)
	base := len(active) / divisionCount
	remainder := len(active) % divisionCount

	plans := make([]DivisionPlan, 0, divisionCount)
	offset := 0
	for i := 0; i < divisionCount; i++ {
		size := base
		if i < remainder {
			size++
		}
		plans = append(plans, DivisionPlan{
			Name:         fmt.Sprintf("Division %d", i+1),
			Number:       int64(i + 1),
			Participants: active[offset : offset+size],
		})
		offset += size
	}

	return plans, nil
}
