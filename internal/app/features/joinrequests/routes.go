// internal/app/features/joinrequests/routes.go
package joinrequests

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the member-facing join-request endpoints.
func MountRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/join-requests/mine", h.ServeMine)
	})
}

// MountAdminRoutes registers the review queue on the admin router.
func MountAdminRoutes(r chi.Router, h *Handler) {
	r.Get("/join-requests", h.ServePending)
	r.Post("/join-requests/{id}/approve", h.HandleApprove)
	r.Post("/join-requests/{id}/reject", h.HandleReject)
}
