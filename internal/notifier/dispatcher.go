package notifier

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/models"
)

// OutboxStore is the slice of storage the dispatcher needs.
type OutboxStore interface {
	FetchUndispatched(ctx context.Context, limit int) ([]models.Event, error)
	MarkDispatched(ctx context.Context, ids []uuid.UUID) error
}

// Publisher broadcasts a single event to its room.
type Publisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// Dispatcher drains the transactional outbox into the room publisher.
// Delivery is at-least-once: rows are marked dispatched only after a
// successful publish, so a crash between publish and mark replays them.
type Dispatcher struct {
	store  OutboxStore
	pub    Publisher
	batch  int
	logger *zap.SugaredLogger
}

// NewDispatcher creates a new outbox dispatcher
func NewDispatcher(store OutboxStore, pub Publisher, batch int, logger *zap.SugaredLogger) *Dispatcher {
	if batch <= 0 {
		batch = 100
	}
	return &Dispatcher{store: store, pub: pub, batch: batch, logger: logger}
}

// Start begins the periodic dispatch loop.
func (d *Dispatcher) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.Drain(ctx)
		}
	}
}

// Drain publishes one batch of undispatched events. Failures are logged and
// the rows stay in the outbox for the next tick.
func (d *Dispatcher) Drain(ctx context.Context) {
	events, err := d.store.FetchUndispatched(ctx, d.batch)
	if err != nil {
		d.logger.Errorw("Failed to fetch outbox events", "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	dispatched := make([]uuid.UUID, 0, len(events))
	for _, event := range events {
		if err := d.pub.Publish(ctx, event); err != nil {
			d.logger.Errorw("Failed to publish event",
				"event_id", event.ID,
				"room", event.Room,
				"type", event.Type,
				"error", err,
			)
			continue
		}
		dispatched = append(dispatched, event.ID)
	}

	if len(dispatched) == 0 {
		return
	}
	if err := d.store.MarkDispatched(ctx, dispatched); err != nil {
		d.logger.Errorw("Failed to mark events dispatched", "error", err)
		return
	}

	d.logger.Infow("Outbox drained", "dispatched", len(dispatched), "fetched", len(events))
}
