package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ijwi/citizen-server/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, body, status, created_at, read_at`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Body, &m.Status, &m.CreatedAt, &m.ReadAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

// CreateMessage inserts a direct message and its notification event
// atomically.
func (s *Postgres) CreateMessage(ctx context.Context, m *models.Message, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		query := `
			INSERT INTO messages (id, sender_id, receiver_id, body, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, query, m.ID, m.SenderID, m.ReceiverID, m.Body, m.Status, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
}

// GetMessage loads a message by id.
func (s *Postgres) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	return scanMessage(s.pool.QueryRow(ctx, query, id))
}

// ListConversation returns all messages between two users, newest first.
func (s *Postgres) ListConversation(ctx context.Context, a, b uuid.UUID) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MarkMessageRead sets the read status and timestamp.
func (s *Postgres) MarkMessageRead(ctx context.Context, id uuid.UUID, readAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages SET status = $2, read_at = $3 WHERE id = $1
	`, id, models.MessageRead, readAt)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
