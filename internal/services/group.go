package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/authz"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
	"github.com/ijwi/citizen-server/internal/store"
)

// GroupStore is the storage the group service needs.
type GroupStore interface {
	CreateGroup(ctx context.Context, g *models.Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)
	// ListGroupsByLocation filters by district and sector; an empty value
	// leaves that dimension unscoped.
	ListGroupsByLocation(ctx context.Context, district, sector string) ([]models.Group, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, m *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	AddAnnouncement(ctx context.Context, a *models.Announcement, events ...models.Event) error
	ListAnnouncements(ctx context.Context, groupID uuid.UUID) ([]models.Announcement, error)
}

// GroupService handles jurisdiction-scoped community channels.
type GroupService struct {
	store  GroupStore
	logger *zap.SugaredLogger
}

// NewGroupService creates a new group service
func NewGroupService(st GroupStore, logger *zap.SugaredLogger) *GroupService {
	return &GroupService{store: st, logger: logger}
}

// Create opens a group in the creating admin's location. The creator becomes
// the first member and can never leave.
func (s *GroupService) Create(ctx context.Context, actor *models.User, req *models.GroupSubmission) (*models.Group, error) {
	if actor.Role != models.RoleSectorAdmin && actor.Role != models.RoleDistrictAdmin {
		return nil, apperr.Authz("only sector and district admins create groups")
	}

	group := &models.Group{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Location:    actor.Location,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	group.MemberCount = 1

	s.logger.Infow("Group created", "id", group.ID, "by", actor.ID)
	return group, nil
}

// List returns groups matching the caller's location, relaxed to
// district-only for district admins, everything for super admins.
func (s *GroupService) List(ctx context.Context, actor *models.User) ([]models.Group, error) {
	switch actor.Role {
	case models.RoleDistrictAdmin:
		return s.store.ListGroupsByLocation(ctx, actor.Location.District, "")
	case models.RoleSuperAdmin:
		return s.store.ListGroupsByLocation(ctx, "", "")
	default:
		return s.store.ListGroupsByLocation(ctx, actor.Location.District, actor.Location.Sector)
	}
}

// Join enrolls the actor; a second join is a 400, a location mismatch a 403.
func (s *GroupService) Join(ctx context.Context, actor *models.User, groupID uuid.UUID) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("group not found")
		}
		return err
	}

	member, err := s.store.IsMember(ctx, groupID, actor.ID)
	if err != nil {
		return err
	}
	if member {
		return apperr.Validation("already a member of this group")
	}
	if !authz.CanJoinGroup(actor, group.Location) {
		return apperr.Authz("group is outside your location")
	}

	err = s.store.AddMember(ctx, &models.GroupMember{GroupID: groupID, UserID: actor.ID, JoinedAt: time.Now()})
	if errors.Is(err, store.ErrDuplicate) {
		return apperr.Validation("already a member of this group")
	}
	return err
}

// Leave removes the actor. The creator is guarded explicitly and can never
// leave their own group.
func (s *GroupService) Leave(ctx context.Context, actor *models.User, groupID uuid.UUID) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("group not found")
		}
		return err
	}
	if group.CreatedBy == actor.ID {
		return apperr.Validation("the group creator cannot leave")
	}

	if err := s.store.RemoveMember(ctx, groupID, actor.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Validation("not a member of this group")
		}
		return err
	}
	return nil
}

// PostAnnouncement appends a broadcast; creator only. The group room is
// notified.
func (s *GroupService) PostAnnouncement(ctx context.Context, actor *models.User, groupID uuid.UUID, req *models.AnnouncementSubmission) (*models.Announcement, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, err
	}
	if group.CreatedBy != actor.ID {
		return nil, apperr.Authz("only the group creator posts announcements")
	}

	announcement := &models.Announcement{
		ID:        uuid.New(),
		GroupID:   groupID,
		Message:   req.Message,
		PostedBy:  actor.ID,
		CreatedAt: time.Now(),
	}

	event, err := notifier.NewEvent(notifier.GroupRoom(groupID), notifier.EventNewAnnouncement, announcement)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddAnnouncement(ctx, announcement, event); err != nil {
		return nil, err
	}
	return announcement, nil
}

// Get returns a group to one of its members.
func (s *GroupService) Get(ctx context.Context, actor *models.User, groupID uuid.UUID) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actor.ID); err != nil {
		return nil, err
	}
	return group, nil
}

// Announcements returns a group's broadcasts to one of its members.
func (s *GroupService) Announcements(ctx context.Context, actor *models.User, groupID uuid.UUID) ([]models.Announcement, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, err
	}
	if err := s.requireMember(ctx, groupID, actor.ID); err != nil {
		return nil, err
	}
	return s.store.ListAnnouncements(ctx, groupID)
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return apperr.Authz("members only")
	}
	return nil
}
