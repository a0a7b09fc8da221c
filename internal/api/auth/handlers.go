package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/authz"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const authQueryTimeout = 5 * time.Second

var queries *appdb.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB) {
	if database == nil {
		return
	}
	queries = database.Queries
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/v1/auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	member, err := queries.GetMemberByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		logger.Error().Err(err).Msg("Failed to load member for login")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	if !VerifyPassword(member.PasswordHash, req.Password) {
		logger.Warn().Str("username", req.Username).Msg("Login rejected: bad password")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	user := authz.AuthUser{
		ID:       member.ID,
		Username: member.Username,
		IsAdmin:  member.IsAdmin,
	}
	if err := CreateSession(w, user); err != nil {
		logger.Error().Err(err).Msg("Failed to create session")
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"id":       member.ID,
		"username": member.Username,
		"isAdmin":  member.IsAdmin,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write login response")
	}
}

// POST /api/v1/auth/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}
