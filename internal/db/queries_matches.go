// internal/db/queries_matches.go
package db

import (
	"context"
	"database/sql"
	"time"
)

const matchColumns = `id, league_id, division_id, player1_id, player1_username,
player2_id, player2_username, status, scheduled_at,
player1_score, player2_score, winner_id, reported_by, leg, created_at`

func scanMatch(row *sql.Row) (LeagueMatch, error) {
	var m LeagueMatch
	err := row.Scan(
		&m.ID, &m.LeagueID, &m.DivisionID, &m.Player1ID, &m.Player1Username,
		&m.Player2ID, &m.Player2Username, &m.Status, &m.ScheduledAt,
		&m.Player1Score, &m.Player2Score, &m.WinnerID, &m.ReportedBy, &m.Leg, &m.CreatedAt,
	)
	return m, err
}

const createLeagueMatch = `
INSERT INTO league_matches (
	league_id, division_id, player1_id, player1_username,
	player2_id, player2_username, status, leg
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + matchColumns

type CreateLeagueMatchParams struct {
	LeagueID        int64
	DivisionID      int64
	Player1ID       int64
	Player1Username string
	Player2ID       int64
	Player2Username string
	Status          string
	Leg             int64
}

func (q *Queries) CreateLeagueMatch(ctx context.Context, arg CreateLeagueMatchParams) (LeagueMatch, error) {
	row := q.db.QueryRowContext(ctx, createLeagueMatch,
		arg.LeagueID, arg.DivisionID, arg.Player1ID, arg.Player1Username,
		arg.Player2ID, arg.Player2Username, arg.Status, arg.Leg,
	)
	return scanMatch(row)
}

const getLeagueMatch = `SELECT ` + matchColumns + ` FROM league_matches WHERE id = ?`

func (q *Queries) GetLeagueMatch(ctx context.Context, id int64) (LeagueMatch, error) {
	return scanMatch(q.db.QueryRowContext(ctx, getLeagueMatch, id))
}

const listLeagueMatches = `SELECT ` + matchColumns + ` FROM league_matches WHERE league_id = ? ORDER BY id`

func (q *Queries) ListLeagueMatches(ctx context.Context, leagueID int64) ([]LeagueMatch, error) {
	return q.queryMatches(ctx, listLeagueMatches, leagueID)
}

const listDivisionMatches = `SELECT ` + matchColumns + ` FROM league_matches WHERE division_id = ? ORDER BY id`

func (q *Queries) ListDivisionMatches(ctx context.Context, divisionID int64) ([]LeagueMatch, error) {
	return q.queryMatches(ctx, listDivisionMatches, divisionID)
}

const listScheduledMatchesBetween = `
SELECT ` + matchColumns + ` FROM league_matches
WHERE status = 'scheduled' AND scheduled_at >= ? AND scheduled_at < ?
ORDER BY scheduled_at
`

func (q *Queries) ListScheduledMatchesBetween(ctx context.Context, from, to time.Time) ([]LeagueMatch, error) {
	return q.queryMatches(ctx, listScheduledMatchesBetween, from, to)
}

func (q *Queries) queryMatches(ctx context.Context, query string, args ...any) ([]LeagueMatch, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []LeagueMatch
	for rows.Next() {
		var m LeagueMatch
		if err := rows.Scan(
			&m.ID, &m.LeagueID, &m.DivisionID, &m.Player1ID, &m.Player1Username,
			&m.Player2ID, &m.Player2Username, &m.Status, &m.ScheduledAt,
			&m.Player1Score, &m.Player2Score, &m.WinnerID, &m.ReportedBy, &m.Leg, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

const updateMatchStatus = `
UPDATE league_matches SET status = ? WHERE id = ? AND status = ?
RETURNING ` + matchColumns

type UpdateMatchStatusParams struct {
	ID         int64
	Status     string
	FromStatus string
}

// UpdateMatchStatus moves a match between statuses. The expected-status
// predicate makes a concurrent transition surface as sql.ErrNoRows.
func (q *Queries) UpdateMatchStatus(ctx context.Context, arg UpdateMatchStatusParams) (LeagueMatch, error) {
	return scanMatch(q.db.QueryRowContext(ctx, updateMatchStatus, arg.Status, arg.ID, arg.FromStatus))
}

const scheduleMatch = `
UPDATE league_matches SET status = ?, scheduled_at = ? WHERE id = ?
RETURNING ` + matchColumns

type ScheduleMatchParams struct {
	ID          int64
	Status      string
	ScheduledAt time.Time
}

func (q *Queries) ScheduleMatch(ctx context.Context, arg ScheduleMatchParams) (LeagueMatch, error) {
	return scanMatch(q.db.QueryRowContext(ctx, scheduleMatch, arg.Status, arg.ScheduledAt, arg.ID))
}

// RecordMatchResult writes scores, winner and reporter in a single update so
// a completed match is never observable with partial result fields.
const recordMatchResult = `
UPDATE league_matches
SET status = ?, player1_score = ?, player2_score = ?, winner_id = ?, reported_by = ?
WHERE id = ?
RETURNING ` + matchColumns

type RecordMatchResultParams struct {
	ID           int64
	Status       string
	Player1Score int64
	Player2Score int64
	WinnerID     sql.NullInt64
	ReportedBy   int64
}

func (q *Queries) RecordMatchResult(ctx context.Context, arg RecordMatchResultParams) (LeagueMatch, error) {
	row := q.db.QueryRowContext(ctx, recordMatchResult,
		arg.Status, arg.Player1Score, arg.Player2Score, arg.WinnerID, arg.ReportedBy, arg.ID,
	)
	return scanMatch(row)
}

const resetMatch = `
UPDATE league_matches
SET status = 'unarranged', scheduled_at = NULL,
    player1_score = NULL, player2_score = NULL, winner_id = NULL, reported_by = NULL
WHERE id = ?
RETURNING ` + matchColumns

func (q *Queries) ResetMatch(ctx context.Context, id int64) (LeagueMatch, error) {
	return scanMatch(q.db.QueryRowContext(ctx, resetMatch, id))
}

const deleteLeagueMatchesByLeague = `DELETE FROM league_matches WHERE league_id = ?`

func (q *Queries) DeleteLeagueMatchesByLeague(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, deleteLeagueMatchesByLeague, leagueID)
	return err
}

const countIncompleteMatches = `
SELECT COUNT(*) FROM league_matches WHERE league_id = ? AND status != 'completed'
`

func (q *Queries) CountIncompleteMatches(ctx context.Context, leagueID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countIncompleteMatches, leagueID).Scan(&count)
	return count, err
}
