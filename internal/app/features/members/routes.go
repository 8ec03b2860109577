// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

// MountAdminRoutes registers member management on the admin router.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/users", h.ServeList)
	r.Put("/users/{id}/role", h.HandleSetRole)
}
