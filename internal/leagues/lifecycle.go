// internal/leagues/lifecycle.go
package leagues

import "errors"

// League statuses.
const (
	StatusDraft            = "draft"
	StatusRegistrationOpen = "registration_open"
	StatusInProgress       = "in_progress"
	StatusCompleted        = "completed"
)

var ErrInvalidLeagueTransition = errors.New("invalid league status transition")

// League status order is strictly forward: draft, registration_open,
// in_progress, completed. Reset is an administrative override handled
// separately and is the only way back.
var leagueTransitions = map[string][]string{
	StatusDraft:            {StatusRegistrationOpen},
	StatusRegistrationOpen: {StatusInProgress},
	StatusInProgress:       {StatusCompleted},
	StatusCompleted:        {},
}

// CanTransitionLeague reports whether a league may move between the two
// statuses through normal admin actions.
func CanTransitionLeague(from, to string) bool {
	for _, allowed := range leagueTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidFormat reports whether the league format is one the fixture generator
// understands.
func ValidFormat(format string) bool {
	switch format {
	case FormatRoundRobin, FormatDoubleRoundRobin, FormatSwiss:
		return true
	default:
		return false
	}
}
