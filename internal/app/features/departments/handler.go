// internal/app/features/departments/handler.go
package departments

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	departmentstore "github.com/cyscom-vit/clubportal/internal/app/store/departments"
	"github.com/cyscom-vit/clubportal/internal/app/store/enrollment"
	"github.com/cyscom-vit/clubportal/internal/app/system/authz"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves department listing, member selection, and the admin
// capacity controls.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	Depts  *departmentstore.Store
	Engine *enrollment.Engine
}

func NewHandler(db *mongo.Database, engine *enrollment.Engine, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		Depts:  departmentstore.New(db),
		Engine: engine,
	}
}

// ServeList handles GET /departments.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	depts, err := h.Depts.List(ctx)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"departments": depts})
}

type selectRequest struct {
	Departments []string `json:"departments"`
}

// HandleSelect handles POST /departments/select.
// The signed-in member picks their departments; once a full selection
// is committed only an admin can change it.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	actor := enrollment.Actor{UserID: userID, Role: role}
	if err := h.Engine.SelectDepartments(ctx, userID, req.Departments, actor); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"departments": enrollment.NormalizeSelection(req.Departments)})
}

type createRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// HandleCreate handles POST /departments (admin).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Capacity < 0 {
		respond.Error(w, http.StatusBadRequest, "capacity must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	dept, err := h.Depts.Create(ctx, req.ID, req.Name, req.Capacity)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, dept)
}

type capacityRequest struct {
	Capacity int `json:"capacity"`
}

// HandleUpdateCapacity handles PUT /departments/{id}/capacity (admin).
// Lowering capacity below the filled count is allowed: current seats
// stay, new reservations fail until attrition brings the count down.
func (h *Handler) HandleUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	deptID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req capacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Capacity < 0 {
		respond.Error(w, http.StatusBadRequest, "capacity must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Depts.UpdateCapacity(ctx, deptID, req.Capacity); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"id": deptID, "capacity": req.Capacity})
}

type assignRequest struct {
	Departments []string `json:"departments"`
}

// HandleAssign handles PUT /admin/users/{id}/departments (admin).
// Admins may change any user's selection, bypassing the member lock.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	role, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	actor := enrollment.Actor{UserID: adminID, Role: role}
	if err := h.Engine.SelectDepartments(ctx, targetID, req.Departments, actor); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"user_id":     targetID.Hex(),
		"departments": enrollment.NormalizeSelection(req.Departments),
	})
}

// HandleReset handles POST /admin/users/{id}/departments/reset (admin).
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	role, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	targetID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	actor := enrollment.Actor{UserID: adminID, Role: role}
	if err := h.Engine.ResetDepartments(ctx, targetID, actor); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user_id": targetID.Hex(), "departments": []string{}})
}

// HandleDelete handles DELETE /departments/{id} (admin).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deptID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	deleted, err := h.Depts.Delete(ctx, deptID)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	if deleted == 0 {
		respond.Error(w, http.StatusNotFound, "department not found")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"deleted": deptID})
}
