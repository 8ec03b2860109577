// internal/app/features/contributions/routes.go
package contributions

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for member contribution endpoints, mounted
// under /contributions.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Post("/", h.HandleSubmit)
	r.Get("/mine", h.ServeMine)
	return r
}

// MountAdminRoutes registers the review queue on the admin router.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/contributions", h.ServePending)
	r.Post("/contributions/{id}/verify", h.HandleVerify)
	r.Post("/contributions/{id}/reject", h.HandleReject)
}
