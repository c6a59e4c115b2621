package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ijwi/citizen-server/internal/models"
)

func insertEvents(ctx context.Context, tx pgx.Tx, events []models.Event) error {
	for _, e := range events {
		_, err := tx.Exec(ctx, `
			INSERT INTO events (id, room, type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, e.ID, e.Room, e.Type, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert event %s: %w", e.Type, err)
		}
	}
	return nil
}

// FetchUndispatched returns the oldest outbox rows not yet published.
func (s *Postgres) FetchUndispatched(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room, type, payload, created_at, dispatched_at
		FROM events
		WHERE dispatched_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Room, &e.Type, &e.Payload, &e.CreatedAt, &e.DispatchedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// MarkDispatched stamps the given rows as published.
func (s *Postgres) MarkDispatched(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE events SET dispatched_at = $2 WHERE id = ANY($1)
	`, ids, time.Now())
	if err != nil {
		return fmt.Errorf("mark dispatched: %w", err)
	}
	return nil
}
