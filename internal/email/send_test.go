package email

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/testutil"
)

type fakeEmailSender struct {
	calls int32
	sent  chan sentEmail
}

type sentEmail struct {
	recipient string
	subject   string
	body      string
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{sent: make(chan sentEmail, 4)}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	atomic.AddInt32(&f.calls, 1)
	f.sent <- sentEmail{recipient: recipient, subject: subject, body: body}
	return nil
}

func (f *fakeEmailSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	return f.Send(ctx, recipient, subject, body)
}

func insertTestMember(t *testing.T, database *db.DB, username, address string) int64 {
	t.Helper()

	member, err := database.Queries.CreateMember(context.Background(), db.CreateMemberParams{
		Username:     username,
		Email:        address,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("insert member: %v", err)
	}
	return member.ID
}

func waitForEmail(t *testing.T, ch <-chan sentEmail) sentEmail {
	t.Helper()

	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("expected an email to be sent")
		return sentEmail{}
	}
}

func TestSendMemberEmail_Delivers(t *testing.T) {
	database := testutil.NewTestDB(t)
	memberID := insertTestMember(t, database, "alice", "alice@test.com")
	sender := newFakeEmailSender()

	SendMemberEmail(context.Background(), database.Queries, sender, memberID, Email{
		Subject: "Subject",
		Body:    "Body",
	}, nil)

	got := waitForEmail(t, sender.sent)
	if got.recipient != "alice@test.com" {
		t.Fatalf("recipient = %q", got.recipient)
	}
	if got.subject != "Subject" || got.body != "Body" {
		t.Fatalf("unexpected message %+v", got)
	}
}

func TestSendMemberEmail_SkipsEmptyMessage(t *testing.T) {
	database := testutil.NewTestDB(t)
	memberID := insertTestMember(t, database, "bob", "bob@test.com")
	sender := newFakeEmailSender()

	SendMemberEmail(context.Background(), database.Queries, sender, memberID, Email{}, nil)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&sender.calls); n != 0 {
		t.Fatalf("expected no sends, got %d", n)
	}
}

func TestSendMemberEmail_SkipsUnknownMember(t *testing.T) {
	database := testutil.NewTestDB(t)
	sender := newFakeEmailSender()

	SendMemberEmail(context.Background(), database.Queries, sender, 9999, Email{
		Subject: "Subject",
		Body:    "Body",
	}, nil)

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&sender.calls); n != 0 {
		t.Fatalf("expected no sends, got %d", n)
	}
}

func TestBuildInvitationEmail(t *testing.T) {
	msg := BuildInvitationEmail(InvitationDetails{
		InviterName: "carol",
		InviteType:  "league",
		EntityName:  "Spring Open",
		Note:        "Join us!",
	})
	if msg.Subject != `Invitation to join Spring Open` {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"carol", "Spring Open", "Join us!"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q: %q", want, msg.Body)
		}
	}
}

func TestBuildMatchScheduledEmail(t *testing.T) {
	when := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)
	msg := BuildMatchScheduledEmail(MatchScheduledDetails{
		LeagueName:   "Spring Open",
		OpponentName: "dave",
		ScheduledAt:  when,
	})
	if !strings.Contains(msg.Body, "dave") || !strings.Contains(msg.Body, "Mar 14") {
		t.Fatalf("body = %q", msg.Body)
	}
}
