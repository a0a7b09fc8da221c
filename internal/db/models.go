// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

type Member struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Club struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	AdminMemberID int64     `json:"adminMemberId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type League struct {
	ID                  int64        `json:"id"`
	ClubID              int64        `json:"clubId"`
	AdminMemberID       int64        `json:"adminMemberId"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	Status              string       `json:"status"`
	Format              string       `json:"format"`
	PlayersPerDivision  int64        `json:"playersPerDivision"`
	DefaultTargetScore  int64        `json:"defaultTargetScore"`
	DefaultUseClock     bool         `json:"defaultUseClock"`
	StartDate           sql.NullTime `json:"startDate"`
	EndDate             sql.NullTime `json:"endDate"`
	RegistrationEndDate sql.NullTime `json:"registrationEndDate"`
	MastheadURL         string       `json:"mastheadUrl"`
	Version             int64        `json:"version"`
	CreatedAt           time.Time    `json:"createdAt"`
}

type Division struct {
	ID             int64  `json:"id"`
	LeagueID       int64  `json:"leagueId"`
	Name           string `json:"name"`
	DivisionNumber int64  `json:"divisionNumber"`
}

type LeagueParticipant struct {
	ID         int64         `json:"id"`
	LeagueID   int64         `json:"leagueId"`
	DivisionID sql.NullInt64 `json:"divisionId"`
	MemberID   int64         `json:"memberId"`
	Username   string        `json:"username"`
	Status     string        `json:"status"`
}

type LeagueMatch struct {
	ID              int64         `json:"id"`
	LeagueID        int64         `json:"leagueId"`
	DivisionID      int64         `json:"divisionId"`
	Player1ID       int64         `json:"player1Id"`
	Player1Username string        `json:"player1Username"`
	Player2ID       int64         `json:"player2Id"`
	Player2Username string        `json:"player2Username"`
	Status          string        `json:"status"`
	ScheduledAt     sql.NullTime  `json:"scheduledAt"`
	Player1Score    sql.NullInt64 `json:"player1Score"`
	Player2Score    sql.NullInt64 `json:"player2Score"`
	WinnerID        sql.NullInt64 `json:"winnerId"`
	ReportedBy      sql.NullInt64 `json:"reportedBy"`
	Leg             int64         `json:"leg"`
	CreatedAt       time.Time     `json:"createdAt"`
}

type MatchProposal struct {
	ID                int64        `json:"id"`
	MatchID           int64        `json:"matchId"`
	ProposerID        int64        `json:"proposerId"`
	ProposerUsername  string       `json:"proposerUsername"`
	RecipientID       int64        `json:"recipientId"`
	RecipientUsername string       `json:"recipientUsername"`
	ProposedTimes     []time.Time  `json:"proposedTimes"`
	AcceptedTime      sql.NullTime `json:"acceptedTime"`
	CustomMessage     string       `json:"customMessage"`
	Status            string       `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
}

type Message struct {
	ID                int64         `json:"id"`
	SenderID          int64         `json:"senderId"`
	SenderUsername    string        `json:"senderUsername"`
	RecipientID       int64         `json:"recipientId"`
	RecipientUsername string        `json:"recipientUsername"`
	Type              string        `json:"type"`
	Subject           string        `json:"subject"`
	Body              string        `json:"body"`
	RelatedEntityID   sql.NullInt64 `json:"relatedEntityId"`
	RelatedEntityType string        `json:"relatedEntityType"`
	Status            string        `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
}

type Invitation struct {
	ID              int64     `json:"id"`
	InviteType      string    `json:"inviteType"`
	EntityID        int64     `json:"entityId"`
	InviterID       int64     `json:"inviterId"`
	InviterUsername string    `json:"inviterUsername"`
	InviteeID       int64     `json:"inviteeId"`
	InviteeUsername string    `json:"inviteeUsername"`
	Note            string    `json:"note"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}
