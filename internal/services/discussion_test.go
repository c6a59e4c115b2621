package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/notifier"
	"github.com/ijwi/citizen-server/internal/store"
)

type fakeDiscussionStore struct {
	discussions map[uuid.UUID]*models.Discussion
	events      []models.Event
	lastFilter  models.DiscussionFilter
}

func newFakeDiscussionStore() *fakeDiscussionStore {
	return &fakeDiscussionStore{discussions: make(map[uuid.UUID]*models.Discussion)}
}

func (f *fakeDiscussionStore) CreateDiscussion(_ context.Context, d *models.Discussion, events ...models.Event) error {
	cp := *d
	f.discussions[d.ID] = &cp
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeDiscussionStore) GetDiscussion(_ context.Context, id uuid.UUID) (*models.Discussion, error) {
	d, ok := f.discussions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDiscussionStore) AddComment(_ context.Context, c *models.Comment, events ...models.Event) error {
	d, ok := f.discussions[c.DiscussionID]
	if !ok {
		return store.ErrNotFound
	}
	d.Comments = append(d.Comments, *c)
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeDiscussionStore) ResolveDiscussion(_ context.Context, id uuid.UUID, resolvedAt time.Time, events ...models.Event) error {
	d, ok := f.discussions[id]
	if !ok || d.Status != models.DiscussionOpen {
		return store.ErrNotFound
	}
	d.Status = models.DiscussionResolved
	d.ResolvedAt = &resolvedAt
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeDiscussionStore) ListDiscussions(_ context.Context, filter models.DiscussionFilter) ([]models.Discussion, error) {
	f.lastFilter = filter
	return nil, nil
}

func startDiscussion(t *testing.T, svc *DiscussionService, citizen *models.User) *models.Discussion {
	t.Helper()
	d, err := svc.Create(context.Background(), citizen, &models.DiscussionSubmission{
		Title:       "Market opening hours",
		Description: "Should the Kimironko market open earlier on weekends?",
		Tags:        []string{"markets"},
	})
	require.NoError(t, err)
	return d
}

func TestCreateDiscussionNotifiesLocationRooms(t *testing.T) {
	st := newFakeDiscussionStore()
	svc := NewDiscussionService(st, zap.NewNop().Sugar())
	citizen := testUser(models.RoleCitizen, remera)

	d := startDiscussion(t, svc, citizen)
	require.Equal(t, models.DiscussionOpen, d.Status)
	require.Equal(t, remera, d.Location)

	require.Len(t, st.events, 2)
	rooms := []string{st.events[0].Room, st.events[1].Room}
	require.Contains(t, rooms, notifier.DistrictRoom("Gasabo"))
	require.Contains(t, rooms, notifier.SectorRoom("Remera"))
}

func TestCommentPermissions(t *testing.T) {
	st := newFakeDiscussionStore()
	svc := NewDiscussionService(st, zap.NewNop().Sugar())
	owner := testUser(models.RoleCitizen, remera)
	d := startDiscussion(t, svc, owner)

	// The owner comments, flag stays off.
	comment, err := svc.AddComment(context.Background(), owner, d.ID, &models.CommentSubmission{Text: "adding context"})
	require.NoError(t, err)
	require.False(t, comment.IsOfficialResponse)

	// Another citizen cannot, even in the same sector.
	_, err = svc.AddComment(context.Background(), testUser(models.RoleCitizen, remera), d.ID, &models.CommentSubmission{Text: "me too"})
	requireStatus(t, err, http.StatusForbidden)

	// A sector admin in jurisdiction gets the official flag regardless of input.
	admin := testUser(models.RoleSectorAdmin, remera)
	official, err := svc.AddComment(context.Background(), admin, d.ID, &models.CommentSubmission{Text: "we are on it"})
	require.NoError(t, err)
	require.True(t, official.IsOfficialResponse)

	// An admin from another sector cannot.
	_, err = svc.AddComment(context.Background(), testUser(models.RoleSectorAdmin, niboye), d.ID, &models.CommentSubmission{Text: "nope"})
	requireStatus(t, err, http.StatusForbidden)
}

func TestResolveDiscussion(t *testing.T) {
	st := newFakeDiscussionStore()
	svc := NewDiscussionService(st, zap.NewNop().Sugar())
	owner := testUser(models.RoleCitizen, remera)
	d := startDiscussion(t, svc, owner)

	// Super admins moderate through rank changes, not thread resolution.
	_, err := svc.Resolve(context.Background(), testUser(models.RoleSuperAdmin, models.Location{}), d.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.Resolve(context.Background(), testUser(models.RoleSectorAdmin, niboye), d.ID)
	requireStatus(t, err, http.StatusForbidden)

	resolved, err := svc.Resolve(context.Background(), testUser(models.RoleSectorAdmin, remera), d.ID)
	require.NoError(t, err)
	require.Equal(t, models.DiscussionResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// Resolving again finds no open thread.
	_, err = svc.Resolve(context.Background(), testUser(models.RoleSectorAdmin, remera), d.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestGetDiscussionVisibility(t *testing.T) {
	st := newFakeDiscussionStore()
	svc := NewDiscussionService(st, zap.NewNop().Sugar())
	owner := testUser(models.RoleCitizen, remera)
	d := startDiscussion(t, svc, owner)

	_, err := svc.Get(context.Background(), owner, d.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), testUser(models.RoleCitizen, remera), d.ID)
	requireStatus(t, err, http.StatusForbidden)

	_, err = svc.Get(context.Background(), testUser(models.RoleDistrictAdmin, models.Location{District: "Gasabo"}), d.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), testUser(models.RoleSuperAdmin, models.Location{}), d.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), owner, uuid.New())
	requireStatus(t, err, http.StatusNotFound)
}

func TestListDiscussionsFilterByRole(t *testing.T) {
	st := newFakeDiscussionStore()
	svc := NewDiscussionService(st, zap.NewNop().Sugar())

	citizen := testUser(models.RoleCitizen, remera)
	_, err := svc.List(context.Background(), citizen, "open", "")
	require.NoError(t, err)
	require.NotNil(t, st.lastFilter.OwnerID)
	require.Equal(t, citizen.ID, *st.lastFilter.OwnerID)
	require.Equal(t, "open", st.lastFilter.Status)

	_, err = svc.List(context.Background(), testUser(models.RoleSectorAdmin, remera), "", "markets")
	require.NoError(t, err)
	require.Nil(t, st.lastFilter.OwnerID)
	require.Equal(t, "Gasabo", st.lastFilter.District)
	require.Equal(t, "Remera", st.lastFilter.Sector)
	require.Equal(t, "markets", st.lastFilter.Tag)

	_, err = svc.List(context.Background(), testUser(models.RoleDistrictAdmin, models.Location{District: "Gasabo"}), "", "")
	require.NoError(t, err)
	require.Equal(t, "Gasabo", st.lastFilter.District)
	require.Empty(t, st.lastFilter.Sector)

	_, err = svc.List(context.Background(), testUser(models.RoleSuperAdmin, models.Location{}), "", "")
	require.NoError(t, err)
	require.Empty(t, st.lastFilter.District)
	require.Nil(t, st.lastFilter.OwnerID)
}
