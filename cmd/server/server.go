// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Bone-Club-Digital/clubhouse/internal/api"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/auth"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/clubs"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/invitations"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/leagues"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/matches"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/members"
	"github.com/Bone-Club-Digital/clubhouse/internal/api/notifications"
	"github.com/Bone-Club-Digital/clubhouse/internal/config"
	"github.com/Bone-Club-Digital/clubhouse/internal/db"
	"github.com/Bone-Club-Digital/clubhouse/internal/email"
	"github.com/Bone-Club-Digital/clubhouse/internal/ratelimit"
)

func newServer(cfg *config.Config, database *db.DB, sender email.EmailSender, limiter *ratelimit.Limiter) *http.Server {
	auth.InitHandlers(database)
	members.InitHandlers(database)
	clubs.InitHandlers(database)
	leagues.InitHandlers(database, sender)
	matches.InitHandlers(database, sender)
	invitations.InitHandlers(database, sender)
	notifications.InitHandlers(database)

	router := http.NewServeMux()
	registerRoutes(router)

	middleware := []api.Middleware{
		api.WithLogging,
		api.WithRecovery,
		api.WithAuth,
		api.WithRequestID,
	}
	if limiter != nil {
		middleware = append(middleware, api.WithRateLimit(limiter))
	}
	handler := api.ChainMiddleware(router, middleware...)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)

	// Members
	mux.HandleFunc("POST /api/v1/members", members.HandleMemberRegister)
	mux.HandleFunc("GET /api/v1/members", members.HandleMembersList)

	// Clubs
	mux.HandleFunc("POST /api/v1/clubs", clubs.HandleClubCreate)
	mux.HandleFunc("GET /api/v1/clubs/{id}", clubs.HandleClubDetail)

	// Leagues
	mux.HandleFunc("GET /api/v1/leagues", leagues.HandleLeaguesList)
	mux.HandleFunc("POST /api/v1/leagues", leagues.HandleLeagueCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}", leagues.HandleLeagueDetail)
	mux.HandleFunc("PUT /api/v1/leagues/{id}", leagues.HandleLeagueUpdate)
	mux.HandleFunc("DELETE /api/v1/leagues/{id}", leagues.HandleLeagueDelete)
	mux.HandleFunc("POST /api/v1/leagues/{id}/registration/open", leagues.HandleRegistrationOpen)
	mux.HandleFunc("POST /api/v1/leagues/{id}/divisions/generate", leagues.HandleDivisionsGenerate)
	mux.HandleFunc("POST /api/v1/leagues/{id}/start", leagues.HandleLeagueStart)
	mux.HandleFunc("POST /api/v1/leagues/{id}/reset", leagues.HandleLeagueReset)
	mux.HandleFunc("GET /api/v1/leagues/{id}/standings", leagues.HandleStandings)
	mux.HandleFunc("GET /api/v1/leagues/{id}/matches", leagues.HandleLeagueMatches)
	mux.HandleFunc("GET /api/v1/leagues/{id}/participants", leagues.HandleParticipantsList)
	mux.HandleFunc("POST /api/v1/leagues/{id}/participants", leagues.HandleParticipantRegister)
	mux.HandleFunc("POST /api/v1/leagues/{id}/participants/{participant_id}/activate", leagues.HandleParticipantActivate)

	// Matches and proposals
	mux.HandleFunc("POST /api/v1/matches/{id}/proposals", matches.HandleProposalCreate)
	mux.HandleFunc("GET /api/v1/matches/{id}/proposals", matches.HandleProposalsList)
	mux.HandleFunc("POST /api/v1/proposals/{id}/respond", matches.HandleProposalRespond)
	mux.HandleFunc("POST /api/v1/matches/{id}/result", matches.HandleResultReport)
	mux.HandleFunc("POST /api/v1/matches/{id}/reset", matches.HandleMatchReset)

	// Invitations
	mux.HandleFunc("POST /api/v1/invitations", invitations.HandleInvitationCreate)
	mux.HandleFunc("POST /api/v1/invitations/bulk", invitations.HandleInvitationBulk)
	mux.HandleFunc("POST /api/v1/invitations/{id}/respond", invitations.HandleInvitationRespond)
	mux.HandleFunc("GET /api/v1/invitations", invitations.HandleInvitationsList)

	// Notifications
	mux.HandleFunc("GET /api/v1/notifications", notifications.HandleNotificationsList)
	mux.HandleFunc("GET /api/v1/notifications/count", notifications.HandleNotificationCount)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", notifications.HandleNotificationRead)
}
