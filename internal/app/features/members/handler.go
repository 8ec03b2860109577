// internal/app/features/members/handler.go
package members

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"github.com/cyscom-vit/clubportal/internal/app/system/authz"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/normalize"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler serves admin member management.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Users *userstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Users: userstore.New(db)}
}

// ServeList handles GET /admin/users.
// Supports ?role= and ?dept= filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if role := normalize.QueryParam(r.URL.Query().Get("role")); role != "" {
		filter["role"] = role
	}
	if dept := normalize.DeptID(r.URL.Query().Get("dept")); dept != "" {
		filter["departments"] = dept
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := h.DB.Collection("users").Find(ctx, filter, opts)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	defer cur.Close(ctx)

	var users []bson.M
	if err := cur.All(ctx, &users); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles PUT /admin/users/{id}/role.
// Only a superadmin may grant or revoke the admin role.
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	if !authz.IsSuperAdmin(r) {
		respond.Error(w, http.StatusForbidden, "superadmin required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetRole(ctx, targetID, req.Role); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"user_id": targetID.Hex(),
		"role":    normalize.Role(req.Role),
	})
}
