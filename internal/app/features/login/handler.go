// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cyscom-vit/clubportal/internal/app/features/shared/respond"
	userstore "github.com/cyscom-vit/clubportal/internal/app/store/users"
	"github.com/cyscom-vit/clubportal/internal/app/system/auth"
	"github.com/cyscom-vit/clubportal/internal/app/system/authz"
	"github.com/cyscom-vit/clubportal/internal/app/system/limits"
	"github.com/cyscom-vit/clubportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const minPasswordLen = 8

// Handler serves local email/password authentication. This is the
// fallback for accounts that cannot use Google sign-in; the password
// must be set first via HandleSetPassword.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrInvalidCredentials) {
			h.Log.Info("login rejected", zap.String("email", req.Email))
			respond.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		respond.StoreError(w, h.Log, err)
		return
	}
	if user.Status == "disabled" {
		h.Log.Info("login: account disabled",
			zap.String("user_id", user.ID.Hex()),
			zap.String("email", user.Email))
		respond.Error(w, http.StatusForbidden, "account disabled")
		return
	}

	sessionUser := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
	}
	if err := auth.SignIn(w, r, sessionUser); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", user.Email))
		respond.Error(w, http.StatusInternalServerError, "could not create session")
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))

	respond.JSON(w, http.StatusOK, map[string]any{
		"user_id": user.ID.Hex(),
		"name":    user.FullName,
		"email":   user.Email,
		"role":    user.Role,
	})
}

type passwordRequest struct {
	Current  string `json:"current_password"`
	Password string `json:"password"`
}

// HandleSetPassword handles PUT /me/password. The current password is
// required once one has been set.
func (h *Handler) HandleSetPassword(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "sign in required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Password) < minPasswordLen {
		respond.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}
	if user.PasswordHash != nil && *user.PasswordHash != "" {
		if _, err := h.Users.Authenticate(ctx, user.Email, req.Current); err != nil {
			if errors.Is(err, userstore.ErrInvalidCredentials) {
				respond.Error(w, http.StatusForbidden, "current password is incorrect")
				return
			}
			respond.StoreError(w, h.Log, err)
			return
		}
	}

	if err := h.Users.SetPassword(ctx, userID, req.Password); err != nil {
		respond.StoreError(w, h.Log, err)
		return
	}

	h.Log.Info("password updated", zap.String("user_id", userID.Hex()))
	respond.JSON(w, http.StatusOK, map[string]any{"updated": true})
}
