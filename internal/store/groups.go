package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ijwi/citizen-server/internal/models"
)

const groupColumns = `g.id, g.name, g.description, g.province, g.district, g.sector, g.created_by, g.created_at`

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.Description,
		&g.Location.Province, &g.Location.District, &g.Location.Sector,
		&g.CreatedBy, &g.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

// CreateGroup inserts a group and enrolls the creator as its first member in
// one transaction. The creator can never leave afterwards.
func (s *Postgres) CreateGroup(ctx context.Context, g *models.Group) error {
	return s.withEvents(ctx, nil, func(tx pgx.Tx) error {
		query := `
			INSERT INTO groups (id, name, description, province, district, sector, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.Exec(ctx, query,
			g.ID, g.Name, g.Description,
			g.Location.Province, g.Location.District, g.Location.Sector,
			g.CreatedBy, g.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)
		`, g.ID, g.CreatedBy, g.CreatedAt)
		if err != nil {
			return fmt.Errorf("enroll creator: %w", err)
		}
		return nil
	})
}

// GetGroup loads a group with its member count.
func (s *Postgres) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	query := `SELECT ` + groupColumns + `,
		(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)
		FROM groups g WHERE g.id = $1`
	var g models.Group
	err := s.pool.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description,
		&g.Location.Province, &g.Location.District, &g.Location.Sector,
		&g.CreatedBy, &g.CreatedAt, &g.MemberCount)
	if err != nil {
		return nil, mapError(err)
	}
	return &g, nil
}

// ListGroupsByLocation returns groups matching the given location. An empty
// district or sector leaves that dimension unscoped, so ("", "") lists every
// group and (district, "") relaxes to district only (the district-admin rule).
func (s *Postgres) ListGroupsByLocation(ctx context.Context, district, sector string) ([]models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if district != "" {
		query += ` AND g.district = ` + arg(district)
	}
	if sector != "" {
		query += ` AND g.sector = ` + arg(sector)
	}
	query += ` ORDER BY g.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// IsMember reports whether user belongs to the group.
func (s *Postgres) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// AddMember enrolls a user. Returns ErrDuplicate on a second join.
func (s *Postgres) AddMember(ctx context.Context, m *models.GroupMember) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`,
		m.GroupID, m.UserID, m.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert member: %w", mapError(err))
	}
	return nil
}

// RemoveMember drops a membership. Returns ErrNotFound for a non-member.
func (s *Postgres) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddAnnouncement appends a broadcast and its notification events atomically.
func (s *Postgres) AddAnnouncement(ctx context.Context, a *models.Announcement, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO announcements (id, group_id, message, posted_by, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, a.ID, a.GroupID, a.Message, a.PostedBy, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert announcement: %w", err)
		}
		return nil
	})
}

// ListAnnouncements returns a group's announcements, newest first.
func (s *Postgres) ListAnnouncements(ctx context.Context, groupID uuid.UUID) ([]models.Announcement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, group_id, message, posted_by, created_at
		FROM announcements WHERE group_id = $1
		ORDER BY created_at DESC
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Announcement
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.GroupID, &a.Message, &a.PostedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
