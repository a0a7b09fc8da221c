package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
)

const (
	sessionCookieName      = "clubhouse_session"
	sessionTTL             = 8 * time.Hour
	sessionTokenBytes      = 32
	sessionCleanupInterval = 15 * time.Minute
)

type sessionRecord struct {
	User      authz.AuthUser
	ExpiresAt time.Time
}

var (
	sessionMu sync.RWMutex
	// In-memory sessions are intentionally ephemeral for local member login.
	sessionStore       = make(map[string]sessionRecord)
	sessionCleanupOnce sync.Once
	secureCookies      = true
)

// SetInsecureCookies disables the Secure cookie attribute for development.
func SetInsecureCookies() {
	secureCookies = false
}

// CreateSession stores a session for the member and sets the cookie.
func CreateSession(w http.ResponseWriter, user authz.AuthUser) error {
	if w == nil {
		return errors.New("session requires response writer")
	}

	startSessionCleanup()

	token, err := newSessionToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(sessionTTL)
	sessionMu.Lock()
	sessionStore[token] = sessionRecord{User: user, ExpiresAt: expiresAt}
	sessionMu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessionTTL.Seconds()),
	})

	return nil
}

// ClearSession removes the request's session and expires the cookie.
func ClearSession(w http.ResponseWriter, r *http.Request) {
	if r != nil {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sessionMu.Lock()
			delete(sessionStore, cookie.Value)
			sessionMu.Unlock()
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// UserFromRequest resolves the authenticated user from the session cookie.
// A missing or expired session yields (nil, nil).
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	if r == nil {
		return nil, errors.New("request is required")
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, nil
	}

	sessionMu.RLock()
	record, ok := sessionStore[cookie.Value]
	sessionMu.RUnlock()
	if !ok {
		return nil, nil
	}
	if time.Now().After(record.ExpiresAt) {
		sessionMu.Lock()
		delete(sessionStore, cookie.Value)
		sessionMu.Unlock()
		return nil, nil
	}

	user := record.User
	return &user, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func startSessionCleanup() {
	sessionCleanupOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(sessionCleanupInterval)
			defer ticker.Stop()
			for range ticker.C {
				now := time.Now()
				sessionMu.Lock()
				for token, record := range sessionStore {
					if now.After(record.ExpiresAt) {
						delete(sessionStore, token)
					}
				}
				sessionMu.Unlock()
			}
		}()
	})
}

// resetSessionsForTest clears all sessions; used by package tests.
func resetSessionsForTest() {
	sessionMu.Lock()
	sessionStore = make(map[string]sessionRecord)
	sessionMu.Unlock()
}
