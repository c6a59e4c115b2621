package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ijwi/citizen-server/internal/models"
)

const complaintColumns = `id, title, description, status, escalation_level, user_id,
	sector_admin_id, district_admin_id, province, district, sector, created_at, resolved_at`

func scanComplaint(row interface{ Scan(...any) error }) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Status, &c.EscalationLevel,
		&c.UserID, &c.SectorAdminID, &c.DistrictAdminID,
		&c.Location.Province, &c.Location.District, &c.Location.Sector,
		&c.CreatedAt, &c.ResolvedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (s *Postgres) scanComplaints(rows pgx.Rows) ([]models.Complaint, error) {
	defer rows.Close()
	var out []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CreateComplaint inserts a complaint and its notification events atomically.
func (s *Postgres) CreateComplaint(ctx context.Context, c *models.Complaint, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		query := `
			INSERT INTO complaints (id, title, description, status, escalation_level, user_id,
				sector_admin_id, district_admin_id, province, district, sector, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := tx.Exec(ctx, query,
			c.ID, c.Title, c.Description, c.Status, c.EscalationLevel, c.UserID,
			c.SectorAdminID, c.DistrictAdminID,
			c.Location.Province, c.Location.District, c.Location.Sector, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert complaint: %w", err)
		}
		return nil
	})
}

// GetComplaint loads a complaint by id alone.
func (s *Postgres) GetComplaint(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`
	return scanComplaint(s.pool.QueryRow(ctx, query, id))
}

// FindPendingComplaintInSector loads a level-0 complaint by id scoped to a
// sector admin's jurisdiction. Cross-jurisdiction and already-escalated
// lookups come back ErrNotFound rather than a permission error.
func (s *Postgres) FindPendingComplaintInSector(ctx context.Context, id uuid.UUID, district, sector string) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE id = $1 AND escalation_level = 0 AND district = $2 AND sector = $3`
	return scanComplaint(s.pool.QueryRow(ctx, query, id, district, sector))
}

// ListComplaintsByOwner returns a citizen's own complaints, newest first.
func (s *Postgres) ListComplaintsByOwner(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return s.scanComplaints(rows)
}

// ListComplaintsBySector returns complaints inside a sector admin's
// jurisdiction, newest first.
func (s *Postgres) ListComplaintsBySector(ctx context.Context, district, sector string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE district = $1 AND sector = $2 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, district, sector)
	if err != nil {
		return nil, err
	}
	return s.scanComplaints(rows)
}

// ListEscalatedByDistrict returns escalated complaints in a district.
func (s *Postgres) ListEscalatedByDistrict(ctx context.Context, district string) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints
		WHERE district = $1 AND escalation_level >= 1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, district)
	if err != nil {
		return nil, err
	}
	return s.scanComplaints(rows)
}

// MarkComplaintEscalated moves a complaint to level 1 and assigns the
// district admin, recording the notification events in the same transaction.
func (s *Postgres) MarkComplaintEscalated(ctx context.Context, id, districtAdminID uuid.UUID, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE complaints
			SET status = $2, escalation_level = 1, district_admin_id = $3
			WHERE id = $1 AND escalation_level = 0
		`, id, models.ComplaintEscalated, districtAdminID)
		if err != nil {
			return fmt.Errorf("escalate complaint: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// MarkComplaintResolved sets the terminal state and resolution timestamp.
func (s *Postgres) MarkComplaintResolved(ctx context.Context, id uuid.UUID, resolvedAt time.Time, events ...models.Event) error {
	return s.withEvents(ctx, events, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE complaints
			SET status = $2, resolved_at = $3
			WHERE id = $1 AND status <> $2
		`, id, models.ComplaintResolved, resolvedAt)
		if err != nil {
			return fmt.Errorf("resolve complaint: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CountComplaintsByStatus groups all complaints by status.
func (s *Postgres) CountComplaintsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	query := `SELECT status, COUNT(*) FROM complaints GROUP BY status ORDER BY status`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
