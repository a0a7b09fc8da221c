// internal/db/queries_leagues.go
package db

import (
	"context"
	"database/sql"
)

const leagueColumns = `id, club_id, admin_member_id, name, description, status, format,
players_per_division, default_target_score, default_use_clock,
start_date, end_date, registration_end_date, masthead_url, version, created_at`

func scanLeague(row *sql.Row) (League, error) {
	var l League
	err := row.Scan(
		&l.ID, &l.ClubID, &l.AdminMemberID, &l.Name, &l.Description, &l.Status, &l.Format,
		&l.PlayersPerDivision, &l.DefaultTargetScore, &l.DefaultUseClock,
		&l.StartDate, &l.EndDate, &l.RegistrationEndDate, &l.MastheadURL, &l.Version, &l.CreatedAt,
	)
	return l, err
}

const createLeague = `
INSERT INTO leagues (
	club_id, admin_member_id, name, description, format,
	players_per_division, default_target_score, default_use_clock,
	start_date, end_date, registration_end_date, masthead_url
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + leagueColumns

type CreateLeagueParams struct {
	ClubID              int64
	AdminMemberID       int64
	Name                string
	Description         string
	Format              string
	PlayersPerDivision  int64
	DefaultTargetScore  int64
	DefaultUseClock     bool
	StartDate           sql.NullTime
	EndDate             sql.NullTime
	RegistrationEndDate sql.NullTime
	MastheadURL         string
}

func (q *Queries) CreateLeague(ctx context.Context, arg CreateLeagueParams) (League, error) {
	row := q.db.QueryRowContext(ctx, createLeague,
		arg.ClubID, arg.AdminMemberID, arg.Name, arg.Description, arg.Format,
		arg.PlayersPerDivision, arg.DefaultTargetScore, arg.DefaultUseClock,
		arg.StartDate, arg.EndDate, arg.RegistrationEndDate, arg.MastheadURL,
	)
	return scanLeague(row)
}

const getLeague = `SELECT ` + leagueColumns + ` FROM leagues WHERE id = ?`

func (q *Queries) GetLeague(ctx context.Context, id int64) (League, error) {
	return scanLeague(q.db.QueryRowContext(ctx, getLeague, id))
}

const listLeaguesByClub = `SELECT ` + leagueColumns + ` FROM leagues WHERE club_id = ? ORDER BY created_at DESC`

func (q *Queries) ListLeaguesByClub(ctx context.Context, clubID int64) ([]League, error) {
	return q.queryLeagues(ctx, listLeaguesByClub, clubID)
}

const listLeaguesByStatus = `SELECT ` + leagueColumns + ` FROM leagues WHERE status = ? ORDER BY created_at`

func (q *Queries) ListLeaguesByStatus(ctx context.Context, status string) ([]League, error) {
	return q.queryLeagues(ctx, listLeaguesByStatus, status)
}

func (q *Queries) queryLeagues(ctx context.Context, query string, args ...any) ([]League, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var leagues []League
	for rows.Next() {
		var l League
		if err := rows.Scan(
			&l.ID, &l.ClubID, &l.AdminMemberID, &l.Name, &l.Description, &l.Status, &l.Format,
			&l.PlayersPerDivision, &l.DefaultTargetScore, &l.DefaultUseClock,
			&l.StartDate, &l.EndDate, &l.RegistrationEndDate, &l.MastheadURL, &l.Version, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

const updateLeague = `
UPDATE leagues SET
	name = ?, description = ?, format = ?, players_per_division = ?,
	default_target_score = ?, default_use_clock = ?,
	start_date = ?, end_date = ?, registration_end_date = ?, masthead_url = ?
WHERE id = ?
RETURNING ` + leagueColumns

type UpdateLeagueParams struct {
	ID                  int64
	Name                string
	Description         string
	Format              string
	PlayersPerDivision  int64
	DefaultTargetScore  int64
	DefaultUseClock     bool
	StartDate           sql.NullTime
	EndDate             sql.NullTime
	RegistrationEndDate sql.NullTime
	MastheadURL         string
}

func (q *Queries) UpdateLeague(ctx context.Context, arg UpdateLeagueParams) (League, error) {
	row := q.db.QueryRowContext(ctx, updateLeague,
		arg.Name, arg.Description, arg.Format, arg.PlayersPerDivision,
		arg.DefaultTargetScore, arg.DefaultUseClock,
		arg.StartDate, arg.EndDate, arg.RegistrationEndDate, arg.MastheadURL,
		arg.ID,
	)
	return scanLeague(row)
}

// UpdateLeagueStatus advances a league's status using an optimistic version
// check. It returns sql.ErrNoRows when the version has moved underneath the
// caller, which handlers surface as a conflict.
const updateLeagueStatus = `
UPDATE leagues SET status = ?, version = version + 1
WHERE id = ? AND version = ?
RETURNING ` + leagueColumns

type UpdateLeagueStatusParams struct {
	ID      int64
	Status  string
	Version int64
}

func (q *Queries) UpdateLeagueStatus(ctx context.Context, arg UpdateLeagueStatusParams) (League, error) {
	row := q.db.QueryRowContext(ctx, updateLeagueStatus, arg.Status, arg.ID, arg.Version)
	return scanLeague(row)
}

const deleteLeague = `DELETE FROM leagues WHERE id = ?`

func (q *Queries) DeleteLeague(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteLeague, id)
	return err
}

const createDivision = `
INSERT INTO divisions (league_id, name, division_number)
VALUES (?, ?, ?)
RETURNING id, league_id, name, division_number
`

type CreateDivisionParams struct {
	LeagueID       int64
	Name           string
	DivisionNumber int64
}

func (q *Queries) CreateDivision(ctx context.Context, arg CreateDivisionParams) (Division, error) {
	row := q.db.QueryRowContext(ctx, createDivision, arg.LeagueID, arg.Name, arg.DivisionNumber)
	var d Division
	err := row.Scan(&d.ID, &d.LeagueID, &d.Name, &d.DivisionNumber)
	return d, err
}

const getDivision = `SELECT id, league_id, name, division_number FROM divisions WHERE id = ?`

func (q *Queries) GetDivision(ctx context.Context, id int64) (Division, error) {
	row := q.db.QueryRowContext(ctx, getDivision, id)
	var d Division
	err := row.Scan(&d.ID, &d.LeagueID, &d.Name, &d.DivisionNumber)
	return d, err
}

const listDivisionsByLeague = `
SELECT id, league_id, name, division_number
FROM divisions WHERE league_id = ? ORDER BY division_number
`

func (q *Queries) ListDivisionsByLeague(ctx context.Context, leagueID int64) ([]Division, error) {
	rows, err := q.db.QueryContext(ctx, listDivisionsByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var divisions []Division
	for rows.Next() {
		var d Division
		if err := rows.Scan(&d.ID, &d.LeagueID, &d.Name, &d.DivisionNumber); err != nil {
			return nil, err
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

const deleteDivisionsByLeague = `DELETE FROM divisions WHERE league_id = ?`

func (q *Queries) DeleteDivisionsByLeague(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, deleteDivisionsByLeague, leagueID)
	return err
}

const createLeagueParticipant = `
INSERT INTO league_participants (league_id, member_id, username, status)
VALUES (?, ?, ?, ?)
RETURNING id, league_id, division_id, member_id, username, status
`

type CreateLeagueParticipantParams struct {
	LeagueID int64
	MemberID int64
	Username string
	Status   string
}

func (q *Queries) CreateLeagueParticipant(ctx context.Context, arg CreateLeagueParticipantParams) (LeagueParticipant, error) {
	row := q.db.QueryRowContext(ctx, createLeagueParticipant, arg.LeagueID, arg.MemberID, arg.Username, arg.Status)
	var p LeagueParticipant
	err := row.Scan(&p.ID, &p.LeagueID, &p.DivisionID, &p.MemberID, &p.Username, &p.Status)
	return p, err
}

const getLeagueParticipant = `
SELECT id, league_id, division_id, member_id, username, status
FROM league_participants WHERE id = ?
`

func (q *Queries) GetLeagueParticipant(ctx context.Context, id int64) (LeagueParticipant, error) {
	row := q.db.QueryRowContext(ctx, getLeagueParticipant, id)
	var p LeagueParticipant
	err := row.Scan(&p.ID, &p.LeagueID, &p.DivisionID, &p.MemberID, &p.Username, &p.Status)
	return p, err
}

const getParticipantByMember = `
SELECT id, league_id, division_id, member_id, username, status
FROM league_participants WHERE league_id = ? AND member_id = ?
`

func (q *Queries) GetParticipantByMember(ctx context.Context, leagueID, memberID int64) (LeagueParticipant, error) {
	row := q.db.QueryRowContext(ctx, getParticipantByMember, leagueID, memberID)
	var p LeagueParticipant
	err := row.Scan(&p.ID, &p.LeagueID, &p.DivisionID, &p.MemberID, &p.Username, &p.Status)
	return p, err
}

const listLeagueParticipants = `
SELECT id, league_id, division_id, member_id, username, status
FROM league_participants WHERE league_id = ? ORDER BY id
`

func (q *Queries) ListLeagueParticipants(ctx context.Context, leagueID int64) ([]LeagueParticipant, error) {
	return q.queryParticipants(ctx, listLeagueParticipants, leagueID)
}

const listDivisionParticipants = `
SELECT id, league_id, division_id, member_id, username, status
FROM league_participants WHERE division_id = ? ORDER BY id
`

func (q *Queries) ListDivisionParticipants(ctx context.Context, divisionID int64) ([]LeagueParticipant, error) {
	return q.queryParticipants(ctx, listDivisionParticipants, divisionID)
}

func (q *Queries) queryParticipants(ctx context.Context, query string, args ...any) ([]LeagueParticipant, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var participants []LeagueParticipant
	for rows.Next() {
		var p LeagueParticipant
		if err := rows.Scan(&p.ID, &p.LeagueID, &p.DivisionID, &p.MemberID, &p.Username, &p.Status); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

const updateParticipantStatus = `
UPDATE league_participants SET status = ? WHERE id = ?
RETURNING id, league_id, division_id, member_id, username, status
`

func (q *Queries) UpdateParticipantStatus(ctx context.Context, id int64, status string) (LeagueParticipant, error) {
	row := q.db.QueryRowContext(ctx, updateParticipantStatus, status, id)
	var p LeagueParticipant
	err := row.Scan(&p.ID, &p.LeagueID, &p.DivisionID, &p.MemberID, &p.Username, &p.Status)
	return p, err
}

const assignParticipantDivision = `
UPDATE league_participants SET division_id = ? WHERE id = ?
`

func (q *Queries) AssignParticipantDivision(ctx context.Context, id, divisionID int64) error {
	_, err := q.db.ExecContext(ctx, assignParticipantDivision, divisionID, id)
	return err
}

const clearParticipantDivisions = `
UPDATE league_participants SET division_id = NULL WHERE league_id = ?
`

func (q *Queries) ClearParticipantDivisions(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, clearParticipantDivisions, leagueID)
	return err
}
