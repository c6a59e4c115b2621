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

// GroupHandler handles group endpoints
type GroupHandler struct {
	svc    *services.GroupService
	logger *zap.SugaredLogger
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(svc *services.GroupService, logger *zap.SugaredLogger) *GroupHandler {
	return &GroupHandler{svc: svc, logger: logger}
}

func groupID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// Create handles POST /api/groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.GroupSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	group, err := h.svc.Create(r.Context(), middleware.CurrentUser(r.Context()), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, group)
}

// List handles GET /api/groups
func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.List(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// Get handles GET /api/groups/{id}
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	group, err := h.svc.Get(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, group)
}

// Join handles POST /api/groups/{id}/join
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	if err := h.svc.Join(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// Leave handles POST /api/groups/{id}/leave
func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	if err := h.svc.Leave(r.Context(), middleware.CurrentUser(r.Context()), id); err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// PostAnnouncement handles POST /api/groups/{id}/announcements
func (h *GroupHandler) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	var req models.AnnouncementSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	announcement, err := h.svc.PostAnnouncement(r.Context(), middleware.CurrentUser(r.Context()), id, &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, announcement)
}

// Announcements handles GET /api/groups/{id}/announcements
func (h *GroupHandler) Announcements(w http.ResponseWriter, r *http.Request) {
	id, ok := groupID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid group id")
		return
	}

	announcements, err := h.svc.Announcements(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, announcements)
}
