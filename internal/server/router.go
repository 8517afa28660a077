// Package server wires the HTTP routes of drivelink.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pysugar/drivelink/internal/auth/google"
	"github.com/pysugar/drivelink/internal/auth/session"
	"github.com/pysugar/drivelink/internal/auth/token"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/logging"
	"github.com/pysugar/drivelink/internal/server/handlers"
	"github.com/pysugar/drivelink/internal/server/middleware"
	"github.com/pysugar/drivelink/internal/service"
)

// Deps are the collaborators shared by every route.
type Deps struct {
	Config    *config.Config
	Store     *db.Store
	Service   *service.Service
	Sessions  *session.Manager
	Refresher *token.Refresher
	BotAPIKey string
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Middleware)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	sessionAuth := middleware.SessionAuth(d.Sessions)

	// ============================================
	// Public Routes (No Auth Required)
	// ============================================

	r.Get("/healthz", handlers.HealthHandler())
	r.Get("/api/version", handlers.VersionHandler())

	// OAuth flow
	r.Get("/auth/google/login", google.HandleLogin(d.Config))
	r.Get("/auth/google/callback", google.HandleCallback(d.Config, d.Store, d.Sessions))

	// ============================================
	// Web Routes (Session Required)
	// ============================================

	r.Group(func(r chi.Router) {
		r.Use(sessionAuth)
		r.Post("/auth/signout", handlers.SignOutHandler(d.Service, d.Sessions))
		r.Get("/api/drive", handlers.DriveIndexHandler(d.Service))
		r.Get("/api/movies", handlers.MoviesHandler(d.Service))
		r.Get("/api/movies/{id}", handlers.MovieHandler(d.Service))
		r.Post("/api/token/refresh", handlers.RefreshHandler(d.Store, d.Refresher))
	})

	// ============================================
	// Bot Routes (API Key Required)
	// ============================================

	r.Route("/api/bot", func(r chi.Router) {
		// Linking is started from the website by the signed-in owner.
		r.With(sessionAuth).Post("/link", handlers.LinkHandler(d.Service))

		r.Group(func(r chi.Router) {
			r.Use(middleware.BotKeyAuth(d.BotAPIKey))
			r.Get("/verify", handlers.VerifyHandler(d.Service))
			r.Get("/cache", handlers.CacheHandler(d.Service))
			r.Get("/files", handlers.FilesHandler(d.Service))
			r.Get("/sync", handlers.SyncHandler(d.Service))
			r.Post("/sync", handlers.SyncHandler(d.Service))
			r.Get("/stats", handlers.StatsHandler(d.Service))
			r.Post("/stats", handlers.StatsHandler(d.Service))
			r.Get("/members", handlers.ListMembersHandler(d.Service))
			r.Post("/members", handlers.ManageMemberHandler(d.Service))
			r.Post("/logout", handlers.BotLogoutHandler(d.Service))
		})
	})

	return r
}
