package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
	"github.com/ijwi/citizen-server/internal/store"
)

// ComplaintStore is the storage the complaint service needs.
type ComplaintStore interface {
	CreateComplaint(ctx context.Context, c *models.Complaint, events ...models.Event) error
	GetComplaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	FindPendingComplaintInSector(ctx context.Context, id uuid.UUID, district, sector string) (*models.Complaint, error)
	ListComplaintsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error)
	ListComplaintsBySector(ctx context.Context, district, sector string) ([]models.Complaint, error)
	ListEscalatedByDistrict(ctx context.Context, district string) ([]models.Complaint, error)
	MarkComplaintEscalated(ctx context.Context, id, districtAdminID uuid.UUID, events ...models.Event) error
	MarkComplaintResolved(ctx context.Context, id uuid.UUID, resolvedAt time.Time, events ...models.Event) error
	CountComplaintsByStatus(ctx context.Context) ([]models.StatusCount, error)
	FindSectorAdmin(ctx context.Context, district, sector string) (*models.User, error)
	FindDistrictAdmin(ctx context.Context, district string) (*models.User, error)
}

// ComplaintService drives the pending -> escalated -> resolved lifecycle.
type ComplaintService struct {
	store  ComplaintStore
	logger *zap.SugaredLogger
}

// NewComplaintService creates a new complaint service
func NewComplaintService(st ComplaintStore, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{store: st, logger: logger}
}

// Submit files a new complaint for a citizen. The sector admin is resolved
// by location lookup at creation time; with no matching admin the complaint
// is not created.
func (s *ComplaintService) Submit(ctx context.Context, citizen *models.User, req *models.ComplaintSubmission) (*models.Complaint, error) {
	admin, err := s.store.FindSectorAdmin(ctx, req.Location.District, req.Location.Sector)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("no sector admin covers %s/%s", req.Location.District, req.Location.Sector)
		}
		return nil, err
	}

	complaint := &models.Complaint{
		ID:              uuid.New(),
		Title:           req.Title,
		Description:     req.Description,
		Status:          models.ComplaintPending,
		EscalationLevel: 0,
		UserID:          citizen.ID,
		SectorAdminID:   &admin.ID,
		Location:        req.Location,
		CreatedAt:       time.Now(),
	}

	event, err := notifier.NewEvent(notifier.UserRoom(admin.ID), notifier.EventNewComplaint, complaint)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateComplaint(ctx, complaint, event); err != nil {
		return nil, err
	}

	s.logger.Infow("Complaint submitted",
		"id", complaint.ID,
		"sector", complaint.Location.Sector,
		"sector_admin", admin.ID,
	)
	return complaint, nil
}

// Escalate hands a level-0 complaint to a district admin. The lookup is
// scoped to the actor's jurisdiction, so cross-jurisdiction and
// already-escalated attempts surface as not-found rather than forbidden.
func (s *ComplaintService) Escalate(ctx context.Context, actor *models.User, complaintID uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.store.FindPendingComplaintInSector(ctx, complaintID,
		actor.Location.District, actor.Location.Sector)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("complaint not found")
		}
		return nil, err
	}

	districtAdmin, err := s.store.FindDistrictAdmin(ctx, complaint.Location.District)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("no district admin covers %s", complaint.Location.District)
		}
		return nil, err
	}

	complaint.Status = models.ComplaintEscalated
	complaint.EscalationLevel = 1
	complaint.DistrictAdminID = &districtAdmin.ID

	event, err := notifier.NewEvent(notifier.UserRoom(districtAdmin.ID), notifier.EventComplaintEscalated, complaint)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkComplaintEscalated(ctx, complaint.ID, districtAdmin.ID, event); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("complaint not found")
		}
		return nil, err
	}

	s.logger.Infow("Complaint escalated",
		"id", complaint.ID,
		"district", complaint.Location.District,
		"district_admin", districtAdmin.ID,
	)
	return complaint, nil
}

// Resolve closes a complaint. The actor must be the currently-assigned admin
// of their own tier; being merely inside the jurisdiction is not enough.
func (s *ComplaintService) Resolve(ctx context.Context, actor *models.User, complaintID uuid.UUID) (*models.Complaint, error) {
	complaint, err := s.store.GetComplaint(ctx, complaintID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("complaint not found")
		}
		return nil, err
	}

	switch actor.Role {
	case models.RoleSectorAdmin:
		if complaint.SectorAdminID == nil || *complaint.SectorAdminID != actor.ID {
			return nil, apperr.Authz("complaint is assigned to a different sector admin")
		}
	case models.RoleDistrictAdmin:
		if complaint.EscalationLevel < 1 {
			return nil, apperr.Authz("complaint has not been escalated")
		}
		if complaint.DistrictAdminID == nil || *complaint.DistrictAdminID != actor.ID {
			return nil, apperr.Authz("complaint is assigned to a different district admin")
		}
	default:
		return nil, apperr.Authz("only assigned admins can resolve complaints")
	}

	now := time.Now()
	complaint.Status = models.ComplaintResolved
	complaint.ResolvedAt = &now

	rooms := []string{notifier.UserRoom(complaint.UserID)}
	if complaint.SectorAdminID != nil {
		rooms = append(rooms, notifier.UserRoom(*complaint.SectorAdminID))
	}
	if complaint.DistrictAdminID != nil {
		rooms = append(rooms, notifier.UserRoom(*complaint.DistrictAdminID))
	}
	events := make([]models.Event, 0, len(rooms))
	for _, room := range rooms {
		event, err := notifier.NewEvent(room, notifier.EventComplaintResolved, complaint)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := s.store.MarkComplaintResolved(ctx, complaint.ID, now, events...); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("complaint not found")
		}
		return nil, err
	}

	s.logger.Infow("Complaint resolved", "id", complaint.ID, "by", actor.ID)
	return complaint, nil
}

// ListMine returns a citizen's own complaints.
func (s *ComplaintService) ListMine(ctx context.Context, citizen *models.User) ([]models.Complaint, error) {
	return s.store.ListComplaintsByOwner(ctx, citizen.ID)
}

// ListSector returns the complaints inside a sector admin's jurisdiction.
func (s *ComplaintService) ListSector(ctx context.Context, actor *models.User) ([]models.Complaint, error) {
	return s.store.ListComplaintsBySector(ctx, actor.Location.District, actor.Location.Sector)
}

// ListDistrict returns escalated complaints in a district admin's district.
func (s *ComplaintService) ListDistrict(ctx context.Context, actor *models.User) ([]models.Complaint, error) {
	return s.store.ListEscalatedByDistrict(ctx, actor.Location.District)
}

// Dashboard returns system-wide complaint counts grouped by status.
func (s *ComplaintService) Dashboard(ctx context.Context) ([]models.StatusCount, error) {
	return s.store.CountComplaintsByStatus(ctx)
}
