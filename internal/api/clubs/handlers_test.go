package clubs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/leagues"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	coreleagues "github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/testutil"
)

func setupClubs(t *testing.T) (*appdb.DB, appdb.Member) {
	t.Helper()
	database := testutil.NewTestDB(t)
	InitHandlers(database)

	member, err := database.Queries.CreateMember(context.Background(), appdb.CreateMemberParams{
		Username: "frank", Email: "frank@test.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return database, member
}

func authedRequest(t *testing.T, member appdb.Member, method, target string, payload any) *http.Request {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	ctx := authz.ContextWithUser(req.Context(), &authz.AuthUser{
		ID:       member.ID,
		Username: member.Username,
		IsAdmin:  member.IsAdmin,
	})
	return req.WithContext(ctx)
}

func TestClubCreateAndDetail(t *testing.T) {
	_, member := setupClubs(t)

	req := authedRequest(t, member, http.MethodPost, "/api/v1/clubs", map[string]any{
		"name":        "Bone Club Central",
		"description": "Downtown backgammon",
	})
	rec := httptest.NewRecorder()
	HandleClubCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var club appdb.Club
	if err := json.Unmarshal(rec.Body.Bytes(), &club); err != nil {
		t.Fatalf("decode club: %v", err)
	}
	if club.Slug != "bone-club-central" {
		t.Fatalf("slug = %q, want bone-club-central", club.Slug)
	}
	if club.AdminMemberID != member.ID {
		t.Fatalf("admin member = %d, want %d", club.AdminMemberID, member.ID)
	}

	req = authedRequest(t, member, http.MethodGet, "/api/v1/clubs/1", nil)
	req.SetPathValue("id", fmt.Sprint(club.ID))
	rec = httptest.NewRecorder()
	HandleClubDetail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate slug conflicts.
	req = authedRequest(t, member, http.MethodPost, "/api/v1/clubs", map[string]any{
		"name": "Bone Club Central",
	})
	rec = httptest.NewRecorder()
	HandleClubCreate(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate slug status = %d, want 409", rec.Code)
	}
}

func TestClubCreateValidation(t *testing.T) {
	_, member := setupClubs(t)

	req := authedRequest(t, member, http.MethodPost, "/api/v1/clubs", map[string]any{"name": "   "})
	rec := httptest.NewRecorder()
	HandleClubCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank name status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/clubs", bytes.NewBufferString(`{"name":"No Auth"}`))
	rec = httptest.NewRecorder()
	HandleClubCreate(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
}

func TestClubDetailNotFound(t *testing.T) {
	_, member := setupClubs(t)

	req := authedRequest(t, member, http.MethodGet, "/api/v1/clubs/99", nil)
	req.SetPathValue("id", "99")
	rec := httptest.NewRecorder()
	HandleClubDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing club status = %d, want 404", rec.Code)
	}
}

// A club created through the API must be usable as a league's home club.
func TestClubBacksLeagueCreation(t *testing.T) {
	database, member := setupClubs(t)
	leagues.InitHandlers(database, nil)

	req := authedRequest(t, member, http.MethodPost, "/api/v1/clubs", map[string]any{
		"name": "Harbor Club",
	})
	rec := httptest.NewRecorder()
	HandleClubCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create club status = %d: %s", rec.Code, rec.Body.String())
	}
	var club appdb.Club
	if err := json.Unmarshal(rec.Body.Bytes(), &club); err != nil {
		t.Fatalf("decode club: %v", err)
	}

	req = authedRequest(t, member, http.MethodPost, "/api/v1/leagues", map[string]any{
		"clubId":             club.ID,
		"name":               "Harbor Autumn League",
		"format":             coreleagues.FormatRoundRobin,
		"playersPerDivision": 4,
		"defaultTargetScore": 5,
	})
	rec = httptest.NewRecorder()
	leagues.HandleLeagueCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create league status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Bone Club Central", "bone-club-central"},
		{"  Riverside  B.C.  ", "riverside-b-c"},
		{"Already-Slugged", "already-slugged"},
		{"Trailing!!", "trailing"},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
