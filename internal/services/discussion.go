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

// DiscussionStore is the storage the discussion service needs.
type DiscussionStore interface {
	CreateDiscussion(ctx context.Context, d *models.Discussion, events ...models.Event) error
	GetDiscussion(ctx context.Context, id uuid.UUID) (*models.Discussion, error)
	AddComment(ctx context.Context, c *models.Comment, events ...models.Event) error
	ResolveDiscussion(ctx context.Context, id uuid.UUID, resolvedAt time.Time, events ...models.Event) error
	ListDiscussions(ctx context.Context, f models.DiscussionFilter) ([]models.Discussion, error)
}

// DiscussionService handles citizen threads and admin moderation.
type DiscussionService struct {
	store  DiscussionStore
	logger *zap.SugaredLogger
}

// NewDiscussionService creates a new discussion service
func NewDiscussionService(st DiscussionStore, logger *zap.SugaredLogger) *DiscussionService {
	return &DiscussionService{store: st, logger: logger}
}

// Create starts a thread. Location is copied from the citizen's assignment,
// and the matching district and sector rooms are notified.
func (s *DiscussionService) Create(ctx context.Context, citizen *models.User, req *models.DiscussionSubmission) (*models.Discussion, error) {
	discussion := &models.Discussion{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   citizen.ID,
		Location:    citizen.Location,
		Tags:        req.Tags,
		Status:      models.DiscussionOpen,
		CreatedAt:   time.Now(),
	}
	if discussion.Tags == nil {
		discussion.Tags = []string{}
	}

	var events []models.Event
	for _, room := range []string{
		notifier.DistrictRoom(discussion.Location.District),
		notifier.SectorRoom(discussion.Location.Sector),
	} {
		event, err := notifier.NewEvent(room, notifier.EventNewDiscussion, discussion)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := s.store.CreateDiscussion(ctx, discussion, events...); err != nil {
		return nil, err
	}

	s.logger.Infow("Discussion created", "id", discussion.ID, "by", citizen.ID)
	return discussion, nil
}

// Get returns a thread with comments, applying the role visibility rule.
func (s *DiscussionService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Discussion, error) {
	discussion, err := s.store.GetDiscussion(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("discussion not found")
		}
		return nil, err
	}
	if !authz.CanAccess(actor, discussion.Location, discussion.CreatedBy) {
		return nil, apperr.Authz("discussion is outside your jurisdiction")
	}
	return discussion, nil
}

// AddComment appends a reply. Citizens may only comment on their own
// threads; admins only inside their jurisdiction. The official-response flag
// is derived from the author's role, never from the request.
func (s *DiscussionService) AddComment(ctx context.Context, actor *models.User, discussionID uuid.UUID, req *models.CommentSubmission) (*models.Comment, error) {
	discussion, err := s.store.GetDiscussion(ctx, discussionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("discussion not found")
		}
		return nil, err
	}

	switch {
	case actor.Role == models.RoleCitizen && discussion.CreatedBy == actor.ID:
	case actor.Role.IsAdmin() && authz.InJurisdiction(actor, discussion.Location):
	default:
		return nil, apperr.Authz("you cannot comment on this discussion")
	}

	comment := &models.Comment{
		ID:                 uuid.New(),
		DiscussionID:       discussion.ID,
		UserID:             actor.ID,
		Text:               req.Text,
		IsOfficialResponse: actor.Role.IsAdmin(),
		CreatedAt:          time.Now(),
	}

	event, err := notifier.NewEvent(notifier.DiscussionRoom(discussion.ID), notifier.EventNewComment, comment)
	if err != nil {
		return nil, err
	}
	if err := s.store.AddComment(ctx, comment, event); err != nil {
		return nil, err
	}
	return comment, nil
}

// Resolve closes a thread; only an admin whose jurisdiction covers it may.
func (s *DiscussionService) Resolve(ctx context.Context, actor *models.User, discussionID uuid.UUID) (*models.Discussion, error) {
	if actor.Role != models.RoleSectorAdmin && actor.Role != models.RoleDistrictAdmin {
		return nil, apperr.Authz("only sector and district admins resolve discussions")
	}

	discussion, err := s.store.GetDiscussion(ctx, discussionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("discussion not found")
		}
		return nil, err
	}
	if !authz.InJurisdiction(actor, discussion.Location) {
		return nil, apperr.Authz("discussion is outside your jurisdiction")
	}

	now := time.Now()
	discussion.Status = models.DiscussionResolved
	discussion.ResolvedAt = &now

	event, err := notifier.NewEvent(notifier.DiscussionRoom(discussion.ID), notifier.EventDiscussionResolved, discussion)
	if err != nil {
		return nil, err
	}
	if err := s.store.ResolveDiscussion(ctx, discussion.ID, now, event); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("discussion not found")
		}
		return nil, err
	}
	return discussion, nil
}

// List returns threads visible to the actor: own for citizens,
// sector+district for sector admins, district for district admins, all for
// super admins. Status and tag narrow further.
func (s *DiscussionService) List(ctx context.Context, actor *models.User, status, tag string) ([]models.Discussion, error) {
	filter := models.DiscussionFilter{Status: status, Tag: tag}
	switch actor.Role {
	case models.RoleCitizen:
		id := actor.ID
		filter.OwnerID = &id
	case models.RoleSectorAdmin:
		filter.District = actor.Location.District
		filter.Sector = actor.Location.Sector
	case models.RoleDistrictAdmin:
		filter.District = actor.Location.District
	case models.RoleSuperAdmin:
	}
	return s.store.ListDiscussions(ctx, filter)
}
