// internal/api/clubs/handlers.go
package clubs

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const clubQueryTimeout = 5 * time.Second

var queries *appdb.Queries

func InitHandlers(db *appdb.DB) {
	queries = db.Queries
}

type clubRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r *clubRequest) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return apiutil.FieldError{Field: "name", Reason: "is required"}
	}
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Slug == "" {
		r.Slug = slugify(r.Name)
	}
	return nil
}

// slugify lowercases the name and collapses runs of non-alphanumeric
// characters into single hyphens.
func slugify(name string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			hyphen = false
		default:
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// POST /api/v1/clubs
func HandleClubCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	var req clubRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubQueryTimeout)
	defer cancel()

	club, err := queries.CreateClub(ctx, appdb.CreateClubParams{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		AdminMemberID: user.ID,
	})
	if err != nil {
		if apiutil.IsSQLiteConstraintViolation(err) {
			http.Error(w, "A club with that slug already exists", http.StatusConflict)
			return
		}
		logger.Error().Err(err).Str("slug", req.Slug).Msg("Failed to create club")
		http.Error(w, "Failed to create club", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, club); err != nil {
		logger.Error().Err(err).Int64("club_id", club.ID).Msg("Failed to write club response")
	}
}

// GET /api/v1/clubs/{id}
func HandleClubDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	clubID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid club ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clubQueryTimeout)
	defer cancel()

	club, err := queries.GetClub(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Club not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to fetch club")
		http.Error(w, "Failed to fetch club", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, club); err != nil {
		logger.Error().Err(err).Int64("club_id", clubID).Msg("Failed to write club response")
	}
}
