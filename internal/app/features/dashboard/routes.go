// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// MountAdminRoutes registers GET /stats on the admin router.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/stats", h.ServeStats)
}
