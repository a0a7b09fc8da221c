// internal/db/queries_proposals.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const proposalColumns = `id, match_id, proposer_id, proposer_username,
recipient_id, recipient_username, proposed_times, accepted_time,
custom_message, status, created_at`

// proposed_times is stored as a JSON array of RFC 3339 timestamps.
func encodeProposedTimes(times []time.Time) (string, error) {
	data, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("encode proposed times: %w", err)
	}
	return string(data), nil
}

func decodeProposedTimes(raw string) ([]time.Time, error) {
	var times []time.Time
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, fmt.Errorf("decode proposed times: %w", err)
	}
	return times, nil
}

func scanProposal(row *sql.Row) (MatchProposal, error) {
	var p MatchProposal
	var rawTimes string
	err := row.Scan(
		&p.ID, &p.MatchID, &p.ProposerID, &p.ProposerUsername,
		&p.RecipientID, &p.RecipientUsername, &rawTimes, &p.AcceptedTime,
		&p.CustomMessage, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		return MatchProposal{}, err
	}
	p.ProposedTimes, err = decodeProposedTimes(rawTimes)
	return p, err
}

const createMatchProposal = `
INSERT INTO match_proposals (
	match_id, proposer_id, proposer_username,
	recipient_id, recipient_username, proposed_times, custom_message
) VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + proposalColumns

type CreateMatchProposalParams struct {
	MatchID           int64
	ProposerID        int64
	ProposerUsername  string
	RecipientID       int64
	RecipientUsername string
	ProposedTimes     []time.Time
	CustomMessage     string
}

func (q *Queries) CreateMatchProposal(ctx context.Context, arg CreateMatchProposalParams) (MatchProposal, error) {
	encoded, err := encodeProposedTimes(arg.ProposedTimes)
	if err != nil {
		return MatchProposal{}, err
	}
	row := q.db.QueryRowContext(ctx, createMatchProposal,
		arg.MatchID, arg.ProposerID, arg.ProposerUsername,
		arg.RecipientID, arg.RecipientUsername, encoded, arg.CustomMessage,
	)
	return scanProposal(row)
}

const getMatchProposal = `SELECT ` + proposalColumns + ` FROM match_proposals WHERE id = ?`

func (q *Queries) GetMatchProposal(ctx context.Context, id int64) (MatchProposal, error) {
	return scanProposal(q.db.QueryRowContext(ctx, getMatchProposal, id))
}

const getPendingProposalForMatch = `
SELECT ` + proposalColumns + ` FROM match_proposals
WHERE match_id = ? AND status = 'pending'
`

func (q *Queries) GetPendingProposalForMatch(ctx context.Context, matchID int64) (MatchProposal, error) {
	return scanProposal(q.db.QueryRowContext(ctx, getPendingProposalForMatch, matchID))
}

// Resolution is one-way: the pending predicate makes a competing
// resolution surface as sql.ErrNoRows instead of overwriting a
// terminal status.
const resolveMatchProposal = `
UPDATE match_proposals SET status = ?, accepted_time = ?
WHERE id = ? AND status = 'pending'
RETURNING ` + proposalColumns

type ResolveMatchProposalParams struct {
	ID           int64
	Status       string
	AcceptedTime sql.NullTime
}

func (q *Queries) ResolveMatchProposal(ctx context.Context, arg ResolveMatchProposalParams) (MatchProposal, error) {
	return scanProposal(q.db.QueryRowContext(ctx, resolveMatchProposal, arg.Status, arg.AcceptedTime, arg.ID))
}

const listProposalsForMatch = `
SELECT ` + proposalColumns + ` FROM match_proposals WHERE match_id = ? ORDER BY created_at DESC
`

func (q *Queries) ListProposalsForMatch(ctx context.Context, matchID int64) ([]MatchProposal, error) {
	rows, err := q.db.QueryContext(ctx, listProposalsForMatch, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var proposals []MatchProposal
	for rows.Next() {
		var p MatchProposal
		var rawTimes string
		if err := rows.Scan(
			&p.ID, &p.MatchID, &p.ProposerID, &p.ProposerUsername,
			&p.RecipientID, &p.RecipientUsername, &rawTimes, &p.AcceptedTime,
			&p.CustomMessage, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if p.ProposedTimes, err = decodeProposedTimes(rawTimes); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}
