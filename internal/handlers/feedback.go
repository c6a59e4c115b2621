package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/services"
)

// FeedbackHandler handles feedback endpoints
type FeedbackHandler struct {
	svc    *services.FeedbackService
	logger *zap.SugaredLogger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(svc *services.FeedbackService, logger *zap.SugaredLogger) *FeedbackHandler {
	return &FeedbackHandler{svc: svc, logger: logger}
}

// Submit handles POST /api/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackSubmission
	if err := decodeJSON(r, &req); err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	feedback, err := h.svc.Submit(r.Context(), middleware.CurrentUser(r.Context()), &req)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, feedback)
}

// Analytics handles GET /api/feedback/analytics
func (h *FeedbackHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Analytics(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
