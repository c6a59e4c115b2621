package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ijwi/citizen-server/internal/models"
)

const discussionColumns = `id, title, description, created_by, province, district, sector,
	tags, status, created_at, resolved_at`

func scanDiscussion(row interface{ Scan(...any) error }) (*models.Discussion, error) {
	var d models.Discussion
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.CreatedBy,
		&d.Location.Province, &d.Location.District, &d.Location.Sector,
		&d.Tags, &d.Status, &d.CreatedAt, &d.ResolvedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &d, nil
}

// CreateDiscussion inserts a thread and its notification events atomically.
func (s *Postgres) CreateDiscussion(ctx context.Context, d *models.Discussion, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		query := `
			INSERT INTO discussions (id, title, description, created_by, province, district, sector, tags, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		_, err := tx.Exec(ctx, query,
			d.ID, d.Title, d.Description, d.CreatedBy,
			d.Location.Province, d.Location.District, d.Location.Sector,
			d.Tags, d.Status, d.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert discussion: %w", err)
		}
		return nil
	})
}

// GetDiscussion loads a thread with its comments in creation order.
func (s *Postgres) GetDiscussion(ctx context.Context, id uuid.UUID) (*models.Discussion, error) {
	query := `SELECT ` + discussionColumns + ` FROM discussions WHERE id = $1`
	d, err := scanDiscussion(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, discussion_id, user_id, text, is_official_response, created_at
		FROM discussion_comments
		WHERE discussion_id = $1
		ORDER BY created_at ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.DiscussionID, &c.UserID, &c.Text, &c.IsOfficialResponse, &c.CreatedAt); err != nil {
			return nil, err
		}
		d.Comments = append(d.Comments, c)
	}
	return d, rows.Err()
}

// AddComment appends a comment and its notification events atomically.
// Comments are append-only; there is no update or delete path.
func (s *Postgres) AddComment(ctx context.Context, c *models.Comment, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		query := `
			INSERT INTO discussion_comments (id, discussion_id, user_id, text, is_official_response, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, query,
			c.ID, c.DiscussionID, c.UserID, c.Text, c.IsOfficialResponse, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

// ResolveDiscussion sets the terminal state; there is no un-resolve.
func (s *Postgres) ResolveDiscussion(ctx context.Context, id uuid.UUID, resolvedAt time.Time, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE discussions SET status = $2, resolved_at = $3
			WHERE id = $1 AND status = $4
		`, id, models.DiscussionResolved, resolvedAt, models.DiscussionOpen)
		if err != nil {
			return fmt.Errorf("resolve discussion: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListDiscussions returns threads narrowed by the role-derived filter:
// owner for citizens, sector+district or district for admins, everything for
// super admins, further narrowed by optional status and tag.
func (s *Postgres) ListDiscussions(ctx context.Context, f models.DiscussionFilter) ([]models.Discussion, error) {
	query := `SELECT ` + discussionColumns + ` FROM discussions WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.OwnerID != nil {
		query += ` AND created_by = ` + arg(*f.OwnerID)
	}
	if f.District != "" {
		query += ` AND district = ` + arg(f.District)
	}
	if f.Sector != "" {
		query += ` AND sector = ` + arg(f.Sector)
	}
	if f.Status != "" {
		query += ` AND status = ` + arg(f.Status)
	}
	if f.Tag != "" {
		query += ` AND ` + arg(f.Tag) + ` = ANY(tags)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Discussion
	for rows.Next() {
		d, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
