package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/models"
)

// FeedbackStore is the storage the feedback service needs.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *models.Feedback) error
	FeedbackStats(ctx context.Context, district, sector string) ([]models.ServiceTypeStats, error)
}

// FeedbackService records immutable service reviews and aggregates them.
type FeedbackService struct {
	store  FeedbackStore
	logger *zap.SugaredLogger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(st FeedbackStore, logger *zap.SugaredLogger) *FeedbackService {
	return &FeedbackService{store: st, logger: logger}
}

// Submit files a review. Rating bounds are enforced at the boundary; the
// service type must be a known enum value.
func (s *FeedbackService) Submit(ctx context.Context, citizen *models.User, req *models.FeedbackSubmission) (*models.Feedback, error) {
	if !models.ValidServiceType(req.ServiceType) {
		return nil, apperr.Validation("unknown service type %q", req.ServiceType)
	}

	feedback := &models.Feedback{
		ID:          uuid.New(),
		ServiceType: models.ServiceType(req.ServiceType),
		Rating:      req.Rating,
		Comments:    req.Comments,
		UserID:      citizen.ID,
		Location:    citizen.Location,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

// Analytics aggregates ratings per service type, auto-scoped to the admin's
// jurisdiction: district admins see their district, sector admins their
// sector, super admins everything.
func (s *FeedbackService) Analytics(ctx context.Context, actor *models.User) ([]models.ServiceTypeStats, error) {
	district, sector := jurisdictionScope(actor)
	return s.store.FeedbackStats(ctx, district, sector)
}

// jurisdictionScope converts an admin's assignment into the (district,
// sector) filter pair used by aggregation queries; empty means unscoped.
func jurisdictionScope(actor *models.User) (district, sector string) {
	switch actor.Role {
	case models.RoleDistrictAdmin:
		return actor.Location.District, ""
	case models.RoleSectorAdmin:
		return actor.Location.District, actor.Location.Sector
	default:
		return "", ""
	}
}
