// internal/app/features/leaderboard/handler.go
package leaderboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultLimit = 50
const maxLimit = 200

// Handler serves the points leaderboard.
type Handler struct {
	Log   *zap.Logger
	Users *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Users: userstore.New(db)}
}

// Serve handles GET /leaderboard.
// Accepts ?limit=N; ties are broken by name so the ordering is stable.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultLimit)
	if raw := query.Get(r, "limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			respond.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := h.Users.Leaderboard(ctx, limit)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
