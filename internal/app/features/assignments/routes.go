// internal/app/features/assignments/routes.go
package assignments

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin assignment routes. The caller wraps the
// router with admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/assignments", h.ListByCounselor)
	r.Post("/assignments", h.Assign)
	r.Post("/assignments/{assignmentID}/end", h.End)
	r.Post("/coverage", h.GrantCoverage)
	r.Post("/coverage/{grantID}/revoke", h.RevokeCoverage)
	r.Put("/users/{userID}/entitlement", h.SetEntitlement)
}
