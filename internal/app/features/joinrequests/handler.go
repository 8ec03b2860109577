// internal/app/features/joinrequests/handler.go
package joinrequests

import (
	"context"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	joinrequeststore "github.com/cyscom-vit/clubportal/internal/app/store/joinrequests"
	"github.com/cyscom-vit/clubportal/internal/app/system/authz"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the admin review queue for project join requests.
type Handler struct {
	Log      *zap.Logger
	Requests *joinrequeststore.Store
}

func NewHandler(requests *joinrequeststore.Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Requests: requests}
}

// ServePending handles GET /admin/join-requests.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Requests.ListPending(ctx)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"join_requests": pending})
}

// ServeMine handles GET /join-requests/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mine, err := h.Requests.ListByUser(ctx, userID)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"join_requests": mine})
}

// HandleApprove handles POST /admin/join-requests/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Requests.Approve, "approved")
}

// HandleReject handles POST /admin/join-requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Requests.Reject, "rejected")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request,
	act func(context.Context, primitive.ObjectID, primitive.ObjectID) error, outcome string) {

	_, _, reviewerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	requestID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := act(ctx, requestID, reviewerID); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"id": requestID.Hex(), "status": outcome})
}
