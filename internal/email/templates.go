package email

import (
	"fmt"
	"strings"
	"time"
)

type Email struct {
	Subject string
	Body    string
}

type InvitationDetails struct {
	InviterName string
	InviteType  string
	EntityName  string
	Note        string
}

type MatchScheduledDetails struct {
	LeagueName   string
	OpponentName string
	ScheduledAt  time.Time
}

type MatchReminderDetails struct {
	LeagueName   string
	OpponentName string
	ScheduledAt  time.Time
}

type LeagueStartedDetails struct {
	LeagueName     string
	DivisionNumber int64
	Format         string
}

func FormatMatchTime(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006 at 3:04 PM MST")
}

func BuildInvitationEmail(details InvitationDetails) Email {
	inviter := strings.TrimSpace(details.InviterName)
	if inviter == "" {
		inviter = "A fellow member"
	}
	entityName := strings.TrimSpace(details.EntityName)
	if entityName == "" {
		entityName = "TBD"
	}
	inviteType := strings.TrimSpace(details.InviteType)
	if inviteType == "" {
		inviteType = "league"
	}

	lines := []string{
		fmt.Sprintf("%s has invited you to join the %s %q.", inviter, inviteType, entityName),
	}
	note := strings.TrimSpace(details.Note)
	if note != "" {
		lines = append(lines, "", fmt.Sprintf("Note from %s: %s", inviter, note))
	}
	lines = append(lines, "", "Log in to respond to this invitation.")

	return Email{
		Subject: fmt.Sprintf("Invitation to join %s", entityName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildMatchScheduledEmail(details MatchScheduledDetails) Email {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "your league"
	}
	opponent := strings.TrimSpace(details.OpponentName)
	if opponent == "" {
		opponent = "your opponent"
	}

	lines := []string{
		fmt.Sprintf("Your %s match is scheduled.", leagueName),
		"",
		fmt.Sprintf("Opponent: %s", opponent),
		fmt.Sprintf("When: %s", FormatMatchTime(details.ScheduledAt)),
	}

	return Email{
		Subject: fmt.Sprintf("Match Scheduled - %s", leagueName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildMatchReminderEmail(details MatchReminderDetails) Email {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "your league"
	}
	opponent := strings.TrimSpace(details.OpponentName)
	if opponent == "" {
		opponent = "your opponent"
	}

	lines := []string{
		fmt.Sprintf("Reminder: your %s match is coming up.", leagueName),
		"",
		fmt.Sprintf("Opponent: %s", opponent),
		fmt.Sprintf("When: %s", FormatMatchTime(details.ScheduledAt)),
	}

	return Email{
		Subject: fmt.Sprintf("Upcoming Match Reminder - %s", leagueName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildLeagueStartedEmail(details LeagueStartedDetails) Email {
	leagueName := strings.TrimSpace(details.LeagueName)
	if leagueName == "" {
		leagueName = "your league"
	}

	lines := []string{
		fmt.Sprintf("The league %q has started.", leagueName),
		"",
	}
	if details.DivisionNumber > 0 {
		lines = append(lines, fmt.Sprintf("You are playing in division %d.", details.DivisionNumber))
	}
	if format := strings.TrimSpace(details.Format); format != "" {
		lines = append(lines, fmt.Sprintf("Format: %s", format))
	}
	lines = append(lines, "Log in to see your fixtures and arrange your matches.")

	return Email{
		Subject: fmt.Sprintf("League Started - %s", leagueName),
		Body:    strings.Join(lines, "\n"),
	}
}
