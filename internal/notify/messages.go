// internal/notify/messages.go
// In-app notification construction. Writers insert these inside the same
// transaction as the state transition they announce.
package notify

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const (
	EntityTypeLeague     = "league"
	EntityTypeMatch      = "match"
	EntityTypeInvitation = "invitation"
)

// Party identifies one side of a notification.
type Party struct {
	ID       int64
	Username string
}

func newMessage(sender, recipient Party, subject, body, entityType string, entityID int64) db.CreateMessageParams {
	return db.CreateMessageParams{
		SenderID:          sender.ID,
		SenderUsername:    sender.Username,
		RecipientID:       recipient.ID,
		RecipientUsername: recipient.Username,
		Type:              "notification",
		Subject:           subject,
		Body:              body,
		RelatedEntityID:   sql.NullInt64{Int64: entityID, Valid: true},
		RelatedEntityType: entityType,
	}
}

// ProposalReceived is sent to the opponent when a match time proposal is created.
func ProposalReceived(proposer, opponent Party, leagueName string, matchID int64, times []time.Time) db.CreateMessageParams {
	body := fmt.Sprintf("%s proposed %d time(s) for your %s match.", proposer.Username, len(times), leagueName)
	return newMessage(proposer, opponent, "Match time proposed", body, EntityTypeMatch, matchID)
}

// ProposalAccepted is sent to the proposer when their proposal is accepted.
func ProposalAccepted(responder, proposer Party, leagueName string, matchID int64, scheduledAt time.Time) db.CreateMessageParams {
	body := fmt.Sprintf("%s accepted your proposal. Your %s match is scheduled for %s.",
		responder.Username, leagueName, scheduledAt.Format(time.RFC1123))
	return newMessage(responder, proposer, "Match proposal accepted", body, EntityTypeMatch, matchID)
}

// ProposalDeclined is sent to the proposer when their proposal is declined.
// The decline message, when present, is carried in the body.
func ProposalDeclined(responder, proposer Party, leagueName string, matchID int64, reason string) db.CreateMessageParams {
	body := fmt.Sprintf("%s declined your %s match proposal.", responder.Username, leagueName)
	if reason != "" {
		body += " Message: " + reason
	}
	return newMessage(responder, proposer, "Match proposal declined", body, EntityTypeMatch, matchID)
}

// ResultReported is sent to the reporter's opponent when a result is recorded.
func ResultReported(reporter, opponent Party, leagueName string, matchID int64, reporterScore, opponentScore int64) db.CreateMessageParams {
	body := fmt.Sprintf("%s reported your %s match result: %d-%d.",
		reporter.Username, leagueName, reporterScore, opponentScore)
	return newMessage(reporter, opponent, "Match result reported", body, EntityTypeMatch, matchID)
}

// InvitationReceived is sent to the invitee when an invitation is created.
func InvitationReceived(inviter, invitee Party, inviteType, entityName string, invitationID int64) db.CreateMessageParams {
	body := fmt.Sprintf("%s invited you to join the %s %q.", inviter.Username, inviteType, entityName)
	return newMessage(inviter, invitee, "Invitation received", body, EntityTypeInvitation, invitationID)
}

// InvitationResolved is sent to the inviter when the invitee accepts or declines.
func InvitationResolved(invitee, inviter Party, inviteType, entityName, status string, invitationID int64) db.CreateMessageParams {
	body := fmt.Sprintf("%s %s your invitation to the %s %q.", invitee.Username, status, inviteType, entityName)
	return newMessage(invitee, inviter, "Invitation "+status, body, EntityTypeInvitation, invitationID)
}

// LeagueStarted is sent to every active participant when fixtures go live.
func LeagueStarted(admin, participant Party, leagueName string, leagueID int64) db.CreateMessageParams {
	body := fmt.Sprintf("The league %q has started. Check your fixtures and arrange your matches.", leagueName)
	return newMessage(admin, participant, "League started", body, EntityTypeLeague, leagueID)
}
