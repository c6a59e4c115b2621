package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/store"
)

// ReportStore is the storage the report service needs.
type ReportStore interface {
	SaveReport(ctx context.Context, r *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ComplaintStats(ctx context.Context, district, sector string) (*models.ComplaintReportData, error)
	FeedbackStats(ctx context.Context, district, sector string) ([]models.ServiceTypeStats, error)
	PerformanceStats(ctx context.Context) (*models.PerformanceReportData, error)
	EngagementStats(ctx context.Context) (*models.EngagementReportData, error)
}

// ReportService runs aggregations and persists the result as a typed
// snapshot before returning it. Exports re-render a snapshot, never re-run
// the aggregation.
type ReportService struct {
	store  ReportStore
	logger *zap.SugaredLogger
}

// NewReportService creates a new report service
func NewReportService(st ReportStore, logger *zap.SugaredLogger) *ReportService {
	return &ReportService{store: st, logger: logger}
}

// GenerateComplaints aggregates complaint handling, auto-scoped to the
// admin's jurisdiction.
func (s *ReportService) GenerateComplaints(ctx context.Context, actor *models.User) (*models.Report, error) {
	district, sector := jurisdictionScope(actor)
	data, err := s.store.ComplaintStats(ctx, district, sector)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, actor, models.ReportComplaints, data, district, sector)
}

// GenerateFeedback aggregates service ratings, auto-scoped like complaints.
func (s *ReportService) GenerateFeedback(ctx context.Context, actor *models.User) (*models.Report, error) {
	district, sector := jurisdictionScope(actor)
	stats, err := s.store.FeedbackStats(ctx, district, sector)
	if err != nil {
		return nil, err
	}
	data := &models.FeedbackReportData{ByService: stats}
	for _, st := range stats {
		data.Total += st.Count
	}
	return s.snapshot(ctx, actor, models.ReportFeedback, data, district, sector)
}

// GeneratePerformance aggregates per-district resolution metrics.
func (s *ReportService) GeneratePerformance(ctx context.Context, actor *models.User) (*models.Report, error) {
	data, err := s.store.PerformanceStats(ctx)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, actor, models.ReportPerformance, data, "", "")
}

// GenerateEngagement aggregates community activity counts.
func (s *ReportService) GenerateEngagement(ctx context.Context, actor *models.User) (*models.Report, error) {
	data, err := s.store.EngagementStats(ctx)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, actor, models.ReportEngagement, data, "", "")
}

// Get loads a snapshot for export. Only its generator or a super admin may.
func (s *ReportService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("report not found")
		}
		return nil, err
	}
	if report.GeneratedBy != actor.ID && actor.Role != models.RoleSuperAdmin {
		return nil, apperr.Authz("report belongs to another user")
	}
	return report, nil
}

func (s *ReportService) snapshot(ctx context.Context, actor *models.User, t models.ReportType, data any, district, sector string) (*models.Report, error) {
	raw, err := models.EncodeReportData(t, data)
	if err != nil {
		return nil, err
	}

	filters := models.ReportFilters{}
	if district != "" || sector != "" {
		filters.Location = &models.Location{
			Province: actor.Location.Province,
			District: district,
			Sector:   sector,
		}
	}

	report := &models.Report{
		ID:          uuid.New(),
		Type:        t,
		GeneratedBy: actor.ID,
		Filters:     filters,
		Data:        raw,
		CreatedAt:   time.Now(),
	}
	if err := s.store.SaveReport(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Infow("Report generated", "id", report.ID, "type", t, "by", actor.ID)
	return report, nil
}
