// internal/app/features/projects/routes.go
package projects

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for project endpoints, mounted under
// /projects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Post("/{id}/join", h.HandleJoin)
		r.Delete("/{id}/join", h.HandleWithdraw)
		r.Post("/{id}/leave", h.HandleLeave)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole("admin", "superadmin"))
		r.Post("/", h.HandleCreate)
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}
