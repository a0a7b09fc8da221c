// internal/leagues/match_lifecycle.go
package leagues

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// League match statuses.
const (
	MatchStatusUnarranged          = "unarranged"
	MatchStatusArrangementProposed = "arrangement_proposed"
	MatchStatusScheduled           = "scheduled"
	MatchStatusPendingResultReport = "pending_result_report"
	MatchStatusCompleted           = "completed"
)

// Proposal statuses.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusAccepted = "accepted"
	ProposalStatusDeclined = "declined"
)

const (
	MinProposedTimes = 1
	MaxProposedTimes = 5
)

var (
	ErrInvalidTransition   = errors.New("invalid match status transition")
	ErrProposalResolved    = errors.New("proposal already resolved")
	ErrTimeNotProposed     = errors.New("selected time is not one of the proposed times")
	ErrNoProposedTimes     = errors.New("at least one proposed time is required")
	ErrTooManyTimes        = fmt.Errorf("at most %d proposed times are allowed", MaxProposedTimes)
	ErrNotMatchParticipant = errors.New("user is not a participant of this match")
	ErrMatchNotOpen        = errors.New("match is not open for a new proposal")
	ErrNegativeScore       = errors.New("scores must be zero or greater")
)

var matchTransitions = map[string][]string{
	MatchStatusUnarranged:          {MatchStatusArrangementProposed},
	MatchStatusArrangementProposed: {MatchStatusScheduled, MatchStatusUnarranged},
	MatchStatusScheduled:           {MatchStatusPendingResultReport, MatchStatusCompleted},
	MatchStatusPendingResultReport: {MatchStatusCompleted},
	// completed is terminal; admin reset bypasses the table deliberately.
	MatchStatusCompleted: {},
}

// CanTransitionMatch reports whether a match may move from one status to
// another through normal play.
func CanTransitionMatch(from, to string) bool {
	for _, allowed := range matchTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateProposedTimes checks the time-slot list for a new proposal.
func ValidateProposedTimes(times []time.Time) error {
	if len(times) < MinProposedTimes {
		return ErrNoProposedTimes
	}
	if len(times) > MaxProposedTimes {
		return ErrTooManyTimes
	}
	return nil
}

// ContainsTime reports whether candidate is one of the proposed times.
func ContainsTime(proposed []time.Time, candidate time.Time) bool {
	for _, t := range proposed {
		if t.Equal(candidate) {
			return true
		}
	}
	return false
}

// ValidateScores rejects negative score values.
func ValidateScores(player1Score, player2Score int64) error {
	if player1Score < 0 || player2Score < 0 {
		return ErrNegativeScore
	}
	return nil
}

// ComputeWinner returns the winner for a completed match. Equal scores are a
// draw and yield an invalid NullInt64.
func ComputeWinner(player1ID, player2ID, player1Score, player2Score int64) sql.NullInt64 {
	switch {
	case player1Score > player2Score:
		return sql.NullInt64{Int64: player1ID, Valid: true}
	case player2Score > player1Score:
		return sql.NullInt64{Int64: player2ID, Valid: true}
	default:
		return sql.NullInt64{}
	}
}
