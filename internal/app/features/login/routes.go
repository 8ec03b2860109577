// internal/app/features/login/routes.go
package login

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the password login endpoints on the supplied
// router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Put("/me/password", h.HandleSetPassword)
	})
}
