// internal/app/features/notes/routes.go
package notes

import "github.com/go-chi/chi/v5"

// MountSessionRoutes mounts the per-session note routes. The router is
// already scoped to /sessions/{sessionID} and requires a signed-in user.
func (h *Handler) MountSessionRoutes(r chi.Router) {
	r.Get("/notes", h.List)
	r.Post("/notes", h.Create)
}

// MountNoteRoutes mounts routes addressing a note directly.
func (h *Handler) MountNoteRoutes(r chi.Router) {
	r.Patch("/{noteID}", h.Update)
	r.Delete("/{noteID}", h.Delete)
}
