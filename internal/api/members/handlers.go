// internal/api/members/handlers.go
package members

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/auth"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const (
	memberQueryTimeout = 5 * time.Second
	membersListLimit   = 100
	defaultPhoneRegion = "US"
	minPasswordLength  = 8
)

var queries *appdb.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	if db == nil {
		return
	}
	queries = db.Queries
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (req *registerRequest) validate() error {
	if strings.TrimSpace(req.Username) == "" {
		return apiutil.FieldError{Field: "username", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apiutil.FieldError{Field: "email", Reason: "must be a valid address"}
	}
	if len(req.Password) < minPasswordLength {
		return apiutil.FieldError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}

// normalizePhone validates and formats an optional phone number to E.164.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	parsed, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return "", apiutil.FieldError{Field: "phone", Reason: "could not be parsed"}
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", apiutil.FieldError{Field: "phone", Reason: "is not a valid number"}
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// POST /api/v1/members
func HandleMemberRegister(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req registerRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	member, err := queries.CreateMember(ctx, appdb.CreateMemberParams{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.TrimSpace(req.Email),
		Phone:        phone,
		PasswordHash: hash,
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			http.Error(w, "Username or email already taken", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Msg("Failed to create member")
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("member_id", member.ID).Str("username", member.Username).Msg("Member registered")
	if err := apiutil.WriteJSON(w, http.StatusCreated, member); err != nil {
		logger.Error().Err(err).Int64("member_id", member.ID).Msg("Failed to write member response")
	}
}

// GET /api/v1/members
func HandleMembersList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if user := apiutil.RequireAuthUser(w, r); user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), memberQueryTimeout)
	defer cancel()

	members, err := queries.ListMembers(ctx, membersListLimit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list members")
		http.Error(w, "Failed to list members", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"members": members}); err != nil {
		logger.Error().Err(err).Msg("Failed to write members response")
	}
}
