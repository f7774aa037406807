// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/dalemusser/counselhub/internal/app/features/notes"
	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts all session routes on the given router. All routes
// require a signed-in user; finer-grained access is enforced per handler.
func (h *Handler) MountRoutes(r chi.Router, noteHandler *notes.Handler) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.Show)
		r.Post("/close", h.Close)
		r.Get("/export", h.Export)
		r.Get("/shares", h.ListShares)
		r.Post("/shares", h.CreateShare)
		r.Post("/shares/claim", h.ClaimShare)
		r.Delete("/shares/{shareID}", h.RevokeShare)
		noteHandler.MountSessionRoutes(r)
	})
}
