// internal/app/features/userinfo/routes.go
package userinfo

import (
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the user-identity endpoints on the supplied
// router. /api/user checks the session itself; /me requires one.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/api/user", h.ServeUserInfo)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/me", h.ServeProfile)
	})
}
