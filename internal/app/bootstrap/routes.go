// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	assignmentsfeature "github.com/dalemusser/counselhub/internal/app/features/assignments"
	healthfeature "github.com/dalemusser/counselhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/counselhub/internal/app/features/login"
	notesfeature "github.com/dalemusser/counselhub/internal/app/features/notes"
	sessionsfeature "github.com/dalemusser/counselhub/internal/app/features/sessions"
	"github.com/dalemusser/counselhub/internal/app/system/auth"
	"github.com/dalemusser/counselhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CounselHub mounts a JSON API: session
// and note routes for signed-in users, admin routes for assignment and
// coverage management, and an unauthenticated health endpoint.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	noteHandler := notesfeature.NewHandler(deps.MongoDatabase, dispatcher, logger)
	sessionHandler := sessionsfeature.NewHandler(deps.MongoDatabase, noteHandler.Service, logger)
	adminHandler := assignmentsfeature.NewHandler(deps.MongoDatabase, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the SessionUser into context if signed in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	r.Get("/health", healthHandler.Serve)

	// Authentication.
	loginfeature.NewHandler(deps.MongoDatabase, logger).MountRoutes(r)

	r.Route("/sessions", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		sessionHandler.MountRoutes(r, noteHandler)
	})

	r.Route("/notes", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		noteHandler.MountNoteRoutes(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(models.RoleAdmin))
		adminHandler.MountRoutes(r)
	})

	return r, nil
}
