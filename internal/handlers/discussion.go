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

// DiscussionHandler handles discussion endpoints
type DiscussionHandler struct {
	svc    *services.DiscussionService
	logger *zap.SugaredLogger
}

// NewDiscussionHandler creates a new discussion handler
func NewDiscussionHandler(svc *services.DiscussionService, logger *zap.SugaredLogger) *DiscussionHandler {
	return &DiscussionHandler{svc: svc, logger: logger}
}

// Create handles POST /api/discussions
func (h *DiscussionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.DiscussionSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	discussion, err := h.svc.Create(r.Context(), middleware.CurrentUser(r.Context()), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, discussion)
}

// List handles GET /api/discussions
func (h *DiscussionHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	tag := r.URL.Query().Get("tag")

	discussions, err := h.svc.List(r.Context(), middleware.CurrentUser(r.Context()), status, tag)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, discussions)
}

// Get handles GET /api/discussions/{id}
func (h *DiscussionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid discussion id")
		return
	}

	discussion, err := h.svc.Get(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, discussion)
}

// AddComment handles POST /api/discussions/{id}/comments
func (h *DiscussionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid discussion id")
		return
	}

	var req models.CommentSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), middleware.CurrentUser(r.Context()), id, &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// Resolve handles PATCH /api/discussions/{id}/resolve
func (h *DiscussionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid discussion id")
		return
	}

	discussion, err := h.svc.Resolve(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, discussion)
}
