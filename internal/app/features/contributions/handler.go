// internal/app/features/contributions/handler.go
package contributions

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	contributionstore "github.com/cyscom-vit/clubportal/internal/app/store/contributions"
	"github.com/cyscom-vit/clubportal/internal/app/system/authz"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxUploadSize = 8 << 20 // 8MB per submission

// Handler serves contribution submission and the admin review queue.
type Handler struct {
	Log           *zap.Logger
	Contributions *contributionstore.Store
	StoragePath   string // local root for attachment files
}

func NewHandler(store *contributionstore.Store, storagePath string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:           logger,
		Contributions: store,
		StoragePath:   storagePath,
	}
}

// HandleSubmit handles POST /contributions.
// Accepts multipart form data: "text" (required), "project_id"
// (optional hex ObjectID), "attachment" (optional file).
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}

	text := r.FormValue("text")

	var projectID *primitive.ObjectID
	if raw := strings.TrimSpace(r.FormValue("project_id")); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid project id")
			return
		}
		projectID = &id
	}

	attachmentPath := ""
	file, header, fileErr := r.FormFile("attachment")
	if fileErr == nil {
		defer file.Close()
		path, err := saveAttachment(h.StoragePath, header.Filename, file)
		if err != nil {
			h.Log.Error("failed to store attachment",
				zap.Error(err),
				zap.String("filename", header.Filename))
			respond.Error(w, http.StatusInternalServerError, "failed to store attachment")
			return
		}
		attachmentPath = filepath.ToSlash(filepath.Join(h.StoragePath, path))
	} else if fileErr != http.ErrMissingFile {
		respond.Error(w, http.StatusBadRequest, "invalid attachment")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	contrib, err := h.Contributions.Submit(ctx, userID, projectID, text, attachmentPath)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, contrib)
}

// ServeMine handles GET /contributions/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mine, err := h.Contributions.ListByUser(ctx, userID)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"contributions": mine})
}

// ServePending handles GET /admin/contributions.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pending, err := h.Contributions.ListPending(ctx)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"contributions": pending})
}

type verifyRequest struct {
	Points *int `json:"points"`
}

// HandleVerify handles POST /admin/contributions/{id}/verify.
// An absent body or omitted points field awards the default; an
// explicit zero awards zero.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	_, _, reviewerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	contributionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid contribution id")
		return
	}

	var req verifyRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	points := limits.DefaultContributionPoints
	if req.Points != nil {
		points = *req.Points
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Contributions.Verify(ctx, contributionID, reviewerID, points); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"id": contributionID.Hex(), "status": "verified"})
}

// HandleReject handles POST /admin/contributions/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	_, _, reviewerID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	contributionID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid contribution id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Contributions.Reject(ctx, contributionID, reviewerID); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"id": contributionID.Hex(), "status": "rejected"})
}
