// internal/db/queries_members.go
package db

import (
	"context"
)

const createMember = `
INSERT INTO members (username, email, phone, password_hash, is_admin)
VALUES (?, ?, ?, ?, ?)
RETURNING id, username, email, phone, password_hash, is_admin, status, created_at
`

type CreateMemberParams struct {
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	IsAdmin      bool
}

func (q *Queries) CreateMember(ctx context.Context, arg CreateMemberParams) (Member, error) {
	row := q.db.QueryRowContext(ctx, createMember,
		arg.Username,
		arg.Email,
		arg.Phone,
		arg.PasswordHash,
		arg.IsAdmin,
	)
	var m Member
	err := row.Scan(&m.ID, &m.Username, &m.Email, &m.Phone, &m.PasswordHash, &m.IsAdmin, &m.Status, &m.CreatedAt)
	return m, err
}

const getMember = `
SELECT id, username, email, phone, password_hash, is_admin, status, created_at
FROM members WHERE id = ?
`

func (q *Queries) GetMember(ctx context.Context, id int64) (Member, error) {
	row := q.db.QueryRowContext(ctx, getMember, id)
	var m Member
	err := row.Scan(&m.ID, &m.Username, &m.Email, &m.Phone, &m.PasswordHash, &m.IsAdmin, &m.Status, &m.CreatedAt)
	return m, err
}

const getMemberByUsername = `
SELECT id, username, email, phone, password_hash, is_admin, status, created_at
FROM members WHERE username = ?
`

func (q *Queries) GetMemberByUsername(ctx context.Context, username string) (Member, error) {
	row := q.db.QueryRowContext(ctx, getMemberByUsername, username)
	var m Member
	err := row.Scan(&m.ID, &m.Username, &m.Email, &m.Phone, &m.PasswordHash, &m.IsAdmin, &m.Status, &m.CreatedAt)
	return m, err
}

const listMembers = `
SELECT id, username, email, phone, password_hash, is_admin, status, created_at
FROM members ORDER BY username LIMIT ?
`

func (q *Queries) ListMembers(ctx context.Context, limit int64) ([]Member, error) {
	rows, err := q.db.QueryContext(ctx, listMembers, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.Phone, &m.PasswordHash, &m.IsAdmin, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

const createClub = `
INSERT INTO clubs (name, slug, description, admin_member_id)
VALUES (?, ?, ?, ?)
RETURNING id, name, slug, description, admin_member_id, created_at
`

type CreateClubParams struct {
	Name          string
	Slug          string
	Description   string
	AdminMemberID int64
}

func (q *Queries) CreateClub(ctx context.Context, arg CreateClubParams) (Club, error) {
	row := q.db.QueryRowContext(ctx, createClub, arg.Name, arg.Slug, arg.Description, arg.AdminMemberID)
	var c Club
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.AdminMemberID, &c.CreatedAt)
	return c, err
}

const getClub = `
SELECT id, name, slug, description, admin_member_id, created_at
FROM clubs WHERE id = ?
`

func (q *Queries) GetClub(ctx context.Context, id int64) (Club, error) {
	row := q.db.QueryRowContext(ctx, getClub, id)
	var c Club
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.AdminMemberID, &c.CreatedAt)
	return c, err
}
