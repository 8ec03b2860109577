// internal/app/features/departments/routes.go
package departments

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for department endpoints, mounted under
// /departments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/select", h.HandleSelect)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin", "superadmin"))
		r.Post("/", h.HandleCreate)
		r.Put("/{id}/capacity", h.HandleUpdateCapacity)
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// MountAdminRoutes registers the per-user selection overrides on the
// admin router.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Put("/users/{id}/departments", h.HandleAssign)
	r.Post("/users/{id}/departments/reset", h.HandleReset)
}
