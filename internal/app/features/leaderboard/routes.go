// internal/app/features/leaderboard/routes.go
package leaderboard

import "github.com/go-chi/chi/v5"

// MountRoutes registers GET /leaderboard on the supplied router.
func MountRoutes(r chi.Router, h *Handler) {
	r.Get("/leaderboard", h.Serve)
}
