// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	metricsstore "github.com/cyscom-vit/clubportal/internal/app/store/metrics"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin dashboard summary.
type Handler struct {
	Log     *zap.Logger
	Metrics *metricsstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Metrics: metricsstore.New(db, logger)}
}

// ServeStats handles GET /admin/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	respond.JSON(w, http.StatusOK, h.Metrics.Summarize(ctx))
}
