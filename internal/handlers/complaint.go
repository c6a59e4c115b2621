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

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	svc    *services.ComplaintService
	logger *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(svc *services.ComplaintService, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{svc: svc, logger: logger}
}

// Submit handles POST /api/complaints
func (h *ComplaintHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ComplaintSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	complaint, err := h.svc.Submit(r.Context(), middleware.CurrentUser(r.Context()), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, complaint)
}

// Mine handles GET /api/complaints/my
func (h *ComplaintHandler) Mine(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.svc.ListMine(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Sector handles GET /api/complaints/sector
func (h *ComplaintHandler) Sector(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.svc.ListSector(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// District handles GET /api/complaints/district
func (h *ComplaintHandler) District(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.svc.ListDistrict(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaints)
}

// Escalate handles PUT /api/complaints/{id}/escalate
func (h *ComplaintHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	complaint, err := h.svc.Escalate(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Resolve handles PUT /api/complaints/{id}/resolve
func (h *ComplaintHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid complaint id")
		return
	}

	complaint, err := h.svc.Resolve(r.Context(), middleware.CurrentUser(r.Context()), id)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, complaint)
}

// Dashboard handles GET /api/complaints/admin/dashboard (super admin only,
// enforced by the router).
func (h *ComplaintHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Dashboard(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"by_status": counts})
}
