// internal/api/notifications/handlers.go
package notifications

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bone-Club-Digital/clubhouse/internal/api/apiutil"
	appdb "github.com/Bone-Club-Digital/clubhouse/internal/db"
)

const (
	notificationsQueryTimeout = 5 * time.Second
	notificationsListLimit    = 25
)

var queries *appdb.Queries

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB) {
	if db == nil {
		return
	}
	queries = db.Queries
}

// GET /api/v1/notifications
func HandleNotificationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	messages, err := queries.ListMessagesForRecipient(ctx, user.ID, notificationsListLimit)
	if err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to list notifications")
		http.Error(w, "Failed to load notifications", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": messages}); err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to write notifications response")
	}
}

// GET /api/v1/notifications/count
func HandleNotificationCount(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	count, err := queries.CountUnreadMessages(ctx, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to count notifications")
		http.Error(w, "Failed to load notifications", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"unread": count}); err != nil {
		logger.Error().Err(err).Int64("member_id", user.ID).Msg("Failed to write notification count")
	}
}

// POST /api/v1/notifications/{id}/read
func HandleNotificationRead(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user := apiutil.RequireAuthUser(w, r)
	if user == nil {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid notification ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), notificationsQueryTimeout)
	defer cancel()

	// Scoping the update to the recipient keeps one member from marking
	// another member's messages read.
	if err := queries.MarkMessageRead(ctx, id, user.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Notification not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("id", id).Msg("Failed to mark notification as read")
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
