package leagues

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/testutil"
)

type fixture struct {
	db    *appdb.DB
	admin appdb.Member
	club  appdb.Club
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	InitHandlers(database, nil)

	admin, err := database.Queries.CreateMember(ctx, appdb.CreateMemberParams{
		Username: "admin", Email: "admin@test.com", PasswordHash: "x", IsAdmin: true,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	club, err := database.Queries.CreateClub(ctx, appdb.CreateClubParams{
		Name: "Test Club", Slug: "test-club", AdminMemberID: admin.ID,
	})
	if err != nil {
		t.Fatalf("create club: %v", err)
	}
	return fixture{db: database, admin: admin, club: club}
}

func (fx fixture) newMember(t *testing.T, username string) appdb.Member {
	t.Helper()
	m, err := fx.db.Queries.CreateMember(context.Background(), appdb.CreateMemberParams{
		Username: username, Email: username + "@test.com", PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create member %s: %v", username, err)
	}
	return m
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

func (fx fixture) createLeague(t *testing.T, playersPerDivision int64) appdb.League {
	t.Helper()

	req := authedRequest(t, fx.admin, http.MethodPost, "/api/v1/leagues", map[string]any{
		"clubId":             fx.club.ID,
		"name":               "Winter League",
		"format":             leagues.FormatRoundRobin,
		"playersPerDivision": playersPerDivision,
		"defaultTargetScore": 5,
	})
	rec := httptest.NewRecorder()
	HandleLeagueCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create league status = %d: %s", rec.Code, rec.Body.String())
	}
	var league appdb.League
	if err := json.Unmarshal(rec.Body.Bytes(), &league); err != nil {
		t.Fatalf("decode league: %v", err)
	}
	return league
}

func (fx fixture) postLeagueAction(t *testing.T, member appdb.Member, leagueID int64, action string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := authedRequest(t, member, http.MethodPost, fmt.Sprintf("/api/v1/leagues/%d/%s", leagueID, action), nil)
	req.SetPathValue("id", fmt.Sprint(leagueID))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func (fx fixture) register(t *testing.T, member appdb.Member, leagueID int64) {
	t.Helper()
	req := authedRequest(t, member, http.MethodPost, fmt.Sprintf("/api/v1/leagues/%d/participants", leagueID), nil)
	req.SetPathValue("id", fmt.Sprint(leagueID))
	rec := httptest.NewRecorder()
	HandleParticipantRegister(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s status = %d: %s", member.Username, rec.Code, rec.Body.String())
	}
}

func TestLeagueCreateValidation(t *testing.T) {
	fx := setup(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing name", map[string]any{"clubId": fx.club.ID, "format": "round_robin", "playersPerDivision": 4, "defaultTargetScore": 5}},
		{"bad format", map[string]any{"clubId": fx.club.ID, "name": "X", "format": "knockout", "playersPerDivision": 4, "defaultTargetScore": 5}},
		{"tiny division", map[string]any{"clubId": fx.club.ID, "name": "X", "format": "round_robin", "playersPerDivision": 1, "defaultTargetScore": 5}},
	}
	for _, tc := range cases {
		req := authedRequest(t, fx.admin, http.MethodPost, "/api/v1/leagues", tc.payload)
		rec := httptest.NewRecorder()
		HandleLeagueCreate(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
		}
	}
}

func TestLeagueLifecycle(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 2)

	if league.Status != leagues.StatusDraft {
		t.Fatalf("new league status = %q", league.Status)
	}

	// Start before registration opens is rejected.
	rec := fx.postLeagueAction(t, fx.admin, league.ID, "start", HandleLeagueStart)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("premature start status = %d, want 400", rec.Code)
	}

	rec = fx.postLeagueAction(t, fx.admin, league.ID, "registration/open", HandleRegistrationOpen)
	if rec.Code != http.StatusOK {
		t.Fatalf("open registration status = %d: %s", rec.Code, rec.Body.String())
	}

	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		fx.register(t, fx.newMember(t, name), league.ID)
	}

	// Start still blocked: no divisions generated yet.
	rec = fx.postLeagueAction(t, fx.admin, league.ID, "start", HandleLeagueStart)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("start without divisions status = %d, want 400", rec.Code)
	}

	rec = fx.postLeagueAction(t, fx.admin, league.ID, "divisions/generate", HandleDivisionsGenerate)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate divisions status = %d: %s", rec.Code, rec.Body.String())
	}
	var generated struct {
		Divisions []appdb.Division `json:"divisions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &generated); err != nil {
		t.Fatalf("decode divisions: %v", err)
	}
	if len(generated.Divisions) != 2 {
		t.Fatalf("divisions = %d, want 2", len(generated.Divisions))
	}

	matches, err := fx.db.Queries.ListLeagueMatches(context.Background(), league.ID)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	// Two divisions of two participants: one fixture each.
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}

	rec = fx.postLeagueAction(t, fx.admin, league.ID, "start", HandleLeagueStart)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := fx.db.Queries.GetLeague(context.Background(), league.ID)
	if got.Status != leagues.StatusInProgress {
		t.Fatalf("league status = %q", got.Status)
	}

	// Every active participant hears about the start, from the admin.
	participants, _ := fx.db.Queries.ListLeagueParticipants(context.Background(), league.ID)
	for _, p := range participants {
		messages, err := fx.db.Queries.ListMessagesForRecipient(context.Background(), p.MemberID, 10)
		if err != nil {
			t.Fatalf("list messages for %s: %v", p.Username, err)
		}
		if len(messages) != 1 {
			t.Fatalf("participant %s messages = %d, want 1", p.Username, len(messages))
		}
		if messages[0].SenderUsername != fx.admin.Username {
			t.Fatalf("sender username = %q, want %q", messages[0].SenderUsername, fx.admin.Username)
		}
	}
}

func TestLeagueLifecycleAuthz(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 4)
	outsider := fx.newMember(t, "mallory")

	rec := fx.postLeagueAction(t, outsider, league.ID, "registration/open", HandleRegistrationOpen)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("outsider open registration status = %d, want 403", rec.Code)
	}
}

func TestDivisionsGenerateRequiresEnoughParticipants(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 4)

	fx.postLeagueAction(t, fx.admin, league.ID, "registration/open", HandleRegistrationOpen)
	fx.register(t, fx.newMember(t, "alice"), league.ID)

	rec := fx.postLeagueAction(t, fx.admin, league.ID, "divisions/generate", HandleDivisionsGenerate)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("generate with 1 participant status = %d, want 400", rec.Code)
	}
}

func TestParticipantRegistrationRules(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 2)
	alice := fx.newMember(t, "alice")

	// Registration closed while draft.
	req := authedRequest(t, alice, http.MethodPost, "/api/v1/leagues/1/participants", nil)
	req.SetPathValue("id", fmt.Sprint(league.ID))
	rec := httptest.NewRecorder()
	HandleParticipantRegister(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("draft registration status = %d, want 400", rec.Code)
	}

	fx.postLeagueAction(t, fx.admin, league.ID, "registration/open", HandleRegistrationOpen)
	fx.register(t, alice, league.ID)

	// Duplicate registration conflicts.
	req = authedRequest(t, alice, http.MethodPost, "/api/v1/leagues/1/participants", nil)
	req.SetPathValue("id", fmt.Sprint(league.ID))
	rec = httptest.NewRecorder()
	HandleParticipantRegister(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate registration status = %d, want 409", rec.Code)
	}
}

func TestStandingsEndpoint(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 2)
	ctx := context.Background()

	fx.postLeagueAction(t, fx.admin, league.ID, "registration/open", HandleRegistrationOpen)
	alice := fx.newMember(t, "alice")
	bob := fx.newMember(t, "bob")
	fx.register(t, alice, league.ID)
	fx.register(t, bob, league.ID)
	fx.postLeagueAction(t, fx.admin, league.ID, "divisions/generate", HandleDivisionsGenerate)

	matches, _ := fx.db.Queries.ListLeagueMatches(ctx, league.ID)
	if len(matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(matches))
	}
	winner := matches[0].Player1ID
	fx.db.Queries.RecordMatchResult(ctx, appdb.RecordMatchResultParams{
		ID:           matches[0].ID,
		Status:       leagues.MatchStatusCompleted,
		Player1Score: 5,
		Player2Score: 2,
		WinnerID:     appdbNullInt64(winner),
		ReportedBy:   winner,
	})

	req := authedRequest(t, alice, http.MethodGet, fmt.Sprintf("/api/v1/leagues/%d/standings", league.ID), nil)
	req.SetPathValue("id", fmt.Sprint(league.ID))
	rec := httptest.NewRecorder()
	HandleStandings(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("standings status = %d: %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Standings []leagues.StandingRow `json:"standings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(response.Standings) != 2 {
		t.Fatalf("standings rows = %d, want 2", len(response.Standings))
	}
	if response.Standings[0].MemberID != winner {
		t.Fatalf("leader = %d, want winner %d", response.Standings[0].MemberID, winner)
	}
	if response.Standings[0].Points != 3 || response.Standings[1].Points != 0 {
		t.Fatalf("points = %d/%d, want 3/0", response.Standings[0].Points, response.Standings[1].Points)
	}
}

func TestLeagueReset(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 2)
	ctx := context.Background()

	fx.postLeagueAction(t, fx.admin, league.ID, "registration/open", HandleRegistrationOpen)
	fx.register(t, fx.newMember(t, "alice"), league.ID)
	fx.register(t, fx.newMember(t, "bob"), league.ID)
	fx.postLeagueAction(t, fx.admin, league.ID, "divisions/generate", HandleDivisionsGenerate)
	if rec := fx.postLeagueAction(t, fx.admin, league.ID, "start", HandleLeagueStart); rec.Code != http.StatusOK {
		t.Fatalf("start status = %d", rec.Code)
	}

	rec := fx.postLeagueAction(t, fx.admin, league.ID, "reset", HandleLeagueReset)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d: %s", rec.Code, rec.Body.String())
	}

	got, _ := fx.db.Queries.GetLeague(ctx, league.ID)
	if got.Status != leagues.StatusRegistrationOpen {
		t.Fatalf("league status = %q after reset", got.Status)
	}
	divisions, _ := fx.db.Queries.ListDivisionsByLeague(ctx, league.ID)
	if len(divisions) != 0 {
		t.Fatalf("divisions after reset = %d", len(divisions))
	}
	matches, _ := fx.db.Queries.ListLeagueMatches(ctx, league.ID)
	if len(matches) != 0 {
		t.Fatalf("matches after reset = %d", len(matches))
	}
	participants, _ := fx.db.Queries.ListLeagueParticipants(ctx, league.ID)
	for _, p := range participants {
		if p.DivisionID.Valid {
			t.Fatalf("participant %s still assigned to a division", p.Username)
		}
	}
}

func TestVersionConflictOnConcurrentTransition(t *testing.T) {
	fx := setup(t)
	league := fx.createLeague(t, 2)
	ctx := context.Background()

	// Another writer bumps the version between read and write.
	if _, err := fx.db.Queries.UpdateLeagueStatus(ctx, appdb.UpdateLeagueStatusParams{
		ID:      league.ID,
		Status:  leagues.StatusDraft,
		Version: league.Version,
	}); err != nil {
		t.Fatalf("bump version: %v", err)
	}

	_, err := fx.db.Queries.UpdateLeagueStatus(ctx, appdb.UpdateLeagueStatusParams{
		ID:      league.ID,
		Status:  leagues.StatusRegistrationOpen,
		Version: league.Version, // stale
	})
	if err == nil {
		t.Fatal("stale version update succeeded")
	}
}

func appdbNullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
