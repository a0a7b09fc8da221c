// internal/db/queries_messages.go
package db

import (
	"context"
	"database/sql"
)

const messageColumns = `id, sender_id, sender_username, recipient_id, recipient_username,
type, subject, body, related_entity_id, related_entity_type, status, created_at`

const createMessage = `
INSERT INTO messages (
	sender_id, sender_username, recipient_id, recipient_username,
	type, subject, body, related_entity_id, related_entity_type
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + messageColumns

type CreateMessageParams struct {
	SenderID          int64
	SenderUsername    string
	RecipientID       int64
	RecipientUsername string
	Type              string
	Subject           string
	Body              string
	RelatedEntityID   sql.NullInt64
	RelatedEntityType string
}

func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (Message, error) {
	row := q.db.QueryRowContext(ctx, createMessage,
		arg.SenderID, arg.SenderUsername, arg.RecipientID, arg.RecipientUsername,
		arg.Type, arg.Subject, arg.Body, arg.RelatedEntityID, arg.RelatedEntityType,
	)
	var m Message
	err := row.Scan(
		&m.ID, &m.SenderID, &m.SenderUsername, &m.RecipientID, &m.RecipientUsername,
		&m.Type, &m.Subject, &m.Body, &m.RelatedEntityID, &m.RelatedEntityType, &m.Status, &m.CreatedAt,
	)
	return m, err
}

const listMessagesForRecipient = `
SELECT ` + messageColumns + ` FROM messages
WHERE recipient_id = ? ORDER BY created_at DESC LIMIT ?
`

func (q *Queries) ListMessagesForRecipient(ctx context.Context, recipientID, limit int64) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, listMessagesForRecipient, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(
			&m.ID, &m.SenderID, &m.SenderUsername, &m.RecipientID, &m.RecipientUsername,
			&m.Type, &m.Subject, &m.Body, &m.RelatedEntityID, &m.RelatedEntityType, &m.Status, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

const countUnreadMessages = `
SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND status = 'unread'
`

func (q *Queries) CountUnreadMessages(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnreadMessages, recipientID).Scan(&count)
	return count, err
}

const markMessageRead = `
UPDATE messages SET status = 'read' WHERE id = ? AND recipient_id = ?
`

func (q *Queries) MarkMessageRead(ctx context.Context, id, recipientID int64) error {
	result, err := q.db.ExecContext(ctx, markMessageRead, id, recipientID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const invitationColumns = `id, invite_type, entity_id, inviter_id, inviter_username,
invitee_id, invitee_username, note, status, created_at`

const createInvitation = `
INSERT INTO invitations (
	invite_type, entity_id, inviter_id, inviter_username,
	invitee_id, invitee_username, note
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + invitationColumns

type CreateInvitationParams struct {
	InviteType      string
	EntityID        int64
	InviterID       int64
	InviterUsername string
	InviteeID       int64
	InviteeUsername string
	Note            string
}

func (q *Queries) CreateInvitation(ctx context.Context, arg CreateInvitationParams) (Invitation, error) {
	row := q.db.QueryRowContext(ctx, createInvitation,
		arg.InviteType, arg.EntityID, arg.InviterID, arg.InviterUsername,
		arg.InviteeID, arg.InviteeUsername, arg.Note,
	)
	return scanInvitation(row)
}

func scanInvitation(row *sql.Row) (Invitation, error) {
	var inv Invitation
	err := row.Scan(
		&inv.ID, &inv.InviteType, &inv.EntityID, &inv.InviterID, &inv.InviterUsername,
		&inv.InviteeID, &inv.InviteeUsername, &inv.Note, &inv.Status, &inv.CreatedAt,
	)
	return inv, err
}

const getInvitation = `SELECT ` + invitationColumns + ` FROM invitations WHERE id = ?`

func (q *Queries) GetInvitation(ctx context.Context, id int64) (Invitation, error) {
	return scanInvitation(q.db.QueryRowContext(ctx, getInvitation, id))
}

const getPendingInvitation = `
SELECT ` + invitationColumns + ` FROM invitations
WHERE invite_type = ? AND entity_id = ? AND invitee_id = ? AND status = 'pending'
`

func (q *Queries) GetPendingInvitation(ctx context.Context, inviteType string, entityID, inviteeID int64) (Invitation, error) {
	return scanInvitation(q.db.QueryRowContext(ctx, getPendingInvitation, inviteType, entityID, inviteeID))
}

const listInvitationsForInvitee = `
SELECT ` + invitationColumns + ` FROM invitations
WHERE invitee_id = ? ORDER BY created_at DESC
`

func (q *Queries) ListInvitationsForInvitee(ctx context.Context, inviteeID int64) ([]Invitation, error) {
	rows, err := q.db.QueryContext(ctx, listInvitationsForInvitee, inviteeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invitations []Invitation
	for rows.Next() {
		var inv Invitation
		if err := rows.Scan(
			&inv.ID, &inv.InviteType, &inv.EntityID, &inv.InviterID, &inv.InviterUsername,
			&inv.InviteeID, &inv.InviteeUsername, &inv.Note, &inv.Status, &inv.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

const resolveInvitation = `
UPDATE invitations SET status = ? WHERE id = ?
RETURNING ` + invitationColumns

func (q *Queries) ResolveInvitation(ctx context.Context, id int64, status string) (Invitation, error) {
	return scanInvitation(q.db.QueryRowContext(ctx, resolveInvitation, status, id))
}
