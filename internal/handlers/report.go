package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/export"
	"github.com/ijwi/citizen-server/internal/middleware"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/services"
)

// ReportHandler handles report generation and export endpoints
type ReportHandler struct {
	svc    *services.ReportService
	logger *zap.SugaredLogger
}

// NewReportHandler creates a new report handler
func NewReportHandler(svc *services.ReportService, logger *zap.SugaredLogger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// Complaints handles GET /api/reports/complaints. Generating a report
// persists a snapshot before returning it.
func (h *ReportHandler) Complaints(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.svc.GenerateComplaints)
}

// Feedback handles GET /api/reports/feedback
func (h *ReportHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.svc.GenerateFeedback)
}

// Performance handles GET /api/reports/performance
func (h *ReportHandler) Performance(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.svc.GeneratePerformance)
}

// Engagement handles GET /api/reports/engagement
func (h *ReportHandler) Engagement(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, h.svc.GenerateEngagement)
}

func (h *ReportHandler) generate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *models.User) (*models.Report, error)) {
	report, err := fn(r.Context(), middleware.CurrentUser(r.Context()))
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.load(r)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// ExportCSV handles GET /api/reports/{id}/csv
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, export.CSV)
}

// ExportPDF handles GET /api/reports/{id}/pdf
func (h *ReportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, export.PDF)
}

func (h *ReportHandler) export(w http.ResponseWriter, r *http.Request, render func(*models.Report) (*export.Result, error)) {
	report, err := h.load(r)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	result, err := render(report)
	if err != nil {
		if errors.Is(err, export.ErrPDFDependencyMissing) {
			respondError(w, http.StatusServiceUnavailable, "PDF export is not available on this server")
			return
		}
		respondFailure(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", result.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Errorw("Failed to write export body", "error", err)
	}
}

func (h *ReportHandler) load(r *http.Request) (*models.Report, error) {
	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, apperr.Validation("invalid report id")
	}
	return h.svc.Get(r.Context(), middleware.CurrentUser(r.Context()), reportID)
}
