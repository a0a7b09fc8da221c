package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
)

func TestSessionRoundTrip(t *testing.T) {
	resetSessionsForTest()

	recorder := httptest.NewRecorder()
	want := authz.AuthUser{ID: 42, Username: "tobias", IsAdmin: true}
	if err := CreateSession(recorder, want); err != nil {
		t.Fatal(err)
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	user, err := UserFromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if user == nil || user.ID != 42 || user.Username != "tobias" || !user.IsAdmin {
		t.Fatalf("user: %+v", user)
	}
}

func TestUserFromRequest_NoCookie(t *testing.T) {
	resetSessionsForTest()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user, err := UserFromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Fatalf("user: %+v", user)
	}
}

func TestClearSession(t *testing.T) {
	resetSessionsForTest()

	recorder := httptest.NewRecorder()
	if err := CreateSession(recorder, authz.AuthUser{ID: 1, Username: "ann"}); err != nil {
		t.Fatal(err)
	}
	cookie := recorder.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	ClearSession(httptest.NewRecorder(), req)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	user, err := UserFromRequest(again)
	if err != nil {
		t.Fatal(err)
	}
	if user != nil {
		t.Fatalf("session survived clear: %+v", user)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "correct horse battery staple") {
		t.Fatal("expected match")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("unexpected match")
	}
}
