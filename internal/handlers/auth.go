package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/services"
)

// AuthHandler handles registration, login and account endpoints.
type AuthHandler struct {
	users  *services.UserService
	logger *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	token, user, err := h.users.Login(r.Context(), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.CurrentUser(r.Context()))
}

// UpdateRole handles PATCH /api/users/{id}/role
func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req models.UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), middleware.CurrentUser(r.Context()), targetID, &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
