package notifier

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/models"
)

func setupPublisher(t *testing.T) (*RedisPublisher, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	pub, err := NewRedisPublisher("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { pub.Close() })
	return pub, s
}

func TestPublishReachesSubscribedRoom(t *testing.T) {
	pub, _ := setupPublisher(t)
	ctx := context.Background()

	room := UserRoom(uuid.New())
	sub := pub.Subscribe(ctx, []string{room})
	defer sub.Close()

	// Wait for the subscription to be established before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event, err := NewEvent(room, EventNewComplaint, map[string]string{"title": "Broken street light"})
	require.NoError(t, err)
	require.NoError(t, pub.Publish(ctx, event))

	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(msgCtx)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	require.Equal(t, room, env.Room)
	require.Equal(t, EventNewComplaint, env.Type)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Equal(t, "Broken street light", payload["title"])
}

func TestRoomsFor(t *testing.T) {
	loc := models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"}

	citizen := &models.User{ID: uuid.New(), Role: models.RoleCitizen, Location: loc}
	rooms := RoomsFor(citizen)
	require.Contains(t, rooms, UserRoom(citizen.ID))
	require.Contains(t, rooms, SectorRoom("Remera"))
	require.Contains(t, rooms, DistrictRoom("Gasabo"))

	sectorAdmin := &models.User{ID: uuid.New(), Role: models.RoleSectorAdmin, Location: loc}
	rooms = RoomsFor(sectorAdmin)
	require.Contains(t, rooms, RoomSectorAdmins)
	require.Contains(t, rooms, SectorRoom("Remera"))

	super := &models.User{ID: uuid.New(), Role: models.RoleSuperAdmin, Location: loc}
	require.Contains(t, RoomsFor(super), RoomSuperAdmins)
}

type fakeOutbox struct {
	mu         sync.Mutex
	events     []models.Event
	dispatched map[uuid.UUID]bool
}

func newFakeOutbox(events ...models.Event) *fakeOutbox {
	return &fakeOutbox{events: events, dispatched: map[uuid.UUID]bool{}}
}

func (f *fakeOutbox) FetchUndispatched(ctx context.Context, limit int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, e := range f.events {
		if !f.dispatched[e.ID] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkDispatched(ctx context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.dispatched[id] = true
	}
	return nil
}

func TestDispatcherDrainsOutbox(t *testing.T) {
	pub, _ := setupPublisher(t)
	ctx := context.Background()

	room := SectorRoom("Remera")
	e1, err := NewEvent(room, EventNewComplaint, map[string]string{"id": "c1"})
	require.NoError(t, err)
	e2, err := NewEvent(room, EventComplaintEscalated, map[string]string{"id": "c1"})
	require.NoError(t, err)

	outbox := newFakeOutbox(e1, e2)
	d := NewDispatcher(outbox, pub, 10, zap.NewNop().Sugar())

	d.Drain(ctx)

	remaining, err := outbox.FetchUndispatched(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, remaining, "all events should be marked dispatched")
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(ctx context.Context, event models.Event) error {
	f.calls++
	return context.DeadlineExceeded
}

func TestDispatcherKeepsFailedEvents(t *testing.T) {
	ctx := context.Background()
	event, err := NewEvent(RoomSuperAdmins, EventComplaintResolved, map[string]string{"id": "c9"})
	require.NoError(t, err)

	outbox := newFakeOutbox(event)
	pub := &failingPublisher{}
	d := NewDispatcher(outbox, pub, 10, zap.NewNop().Sugar())

	d.Drain(ctx)

	remaining, err := outbox.FetchUndispatched(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "failed publish must stay in the outbox")
	require.Equal(t, 1, pub.calls)
}
