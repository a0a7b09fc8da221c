package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/testutil"
)

func setup(t *testing.T) (*appdb.DB, appdb.Member, appdb.Member) {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	InitHandlers(database)

	sender, err := database.Queries.CreateMember(ctx, appdb.CreateMemberParams{
		Username: "sender", Email: "sender@test.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create sender: %v", err)
	}
	recipient, err := database.Queries.CreateMember(ctx, appdb.CreateMemberParams{
		Username: "recipient", Email: "recipient@test.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create recipient: %v", err)
	}
	return database, sender, recipient
}

func insertMessage(t *testing.T, database *appdb.DB, sender, recipient appdb.Member, subject string) appdb.Message {
	t.Helper()
	msg, err := database.Queries.CreateMessage(context.Background(), appdb.CreateMessageParams{
		SenderID:          sender.ID,
		SenderUsername:    sender.Username,
		RecipientID:       recipient.ID,
		RecipientUsername: recipient.Username,
		Type:              "notification",
		Subject:           subject,
		Body:              "body",
		RelatedEntityID:   sql.NullInt64{Int64: 1, Valid: true},
		RelatedEntityType: "match",
	})
	if err != nil {
		t.Fatalf("create message: %v", err)
	}
	return msg
}

func authedRequest(member appdb.Member, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: member.ID, Username: member.Username})
	return req.WithContext(ctx)
}

func TestNotificationListAndCount(t *testing.T) {
	database, sender, recipient := setup(t)
	insertMessage(t, database, sender, recipient, "first")
	insertMessage(t, database, sender, recipient, "second")

	rec := httptest.NewRecorder()
	HandleNotificationsList(rec, authedRequest(recipient, http.MethodGet, "/api/v1/notifications"))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Notifications []appdb.Message `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Notifications) != 2 {
		t.Fatalf("notifications = %d, want 2", len(listed.Notifications))
	}

	rec = httptest.NewRecorder()
	HandleNotificationCount(rec, authedRequest(recipient, http.MethodGet, "/api/v1/notifications/count"))
	var counted struct {
		Unread int64 `json:"unread"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &counted); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if counted.Unread != 2 {
		t.Fatalf("unread = %d, want 2", counted.Unread)
	}

	// The sender sees nothing.
	rec = httptest.NewRecorder()
	HandleNotificationsList(rec, authedRequest(sender, http.MethodGet, "/api/v1/notifications"))
	json.Unmarshal(rec.Body.Bytes(), &listed)
	if len(listed.Notifications) != 0 {
		t.Fatalf("sender notifications = %d, want 0", len(listed.Notifications))
	}
}

func TestNotificationMarkRead(t *testing.T) {
	database, sender, recipient := setup(t)
	msg := insertMessage(t, database, sender, recipient, "subject")

	req := authedRequest(recipient, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", msg.ID))
	req.SetPathValue("id", fmt.Sprint(msg.ID))
	rec := httptest.NewRecorder()
	HandleNotificationRead(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("read status = %d", rec.Code)
	}

	count, _ := database.Queries.CountUnreadMessages(context.Background(), recipient.ID)
	if count != 0 {
		t.Fatalf("unread = %d after read", count)
	}

	// Another member cannot mark it.
	other := insertMessage(t, database, sender, recipient, "other")
	req = authedRequest(sender, http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", other.ID))
	req.SetPathValue("id", fmt.Sprint(other.ID))
	rec = httptest.NewRecorder()
	HandleNotificationRead(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign read status = %d, want 404", rec.Code)
	}
}

func TestNotificationRequiresAuth(t *testing.T) {
	setup(t)

	rec := httptest.NewRecorder()
	HandleNotificationsList(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
}
