package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

// SaveReport persists an aggregation snapshot. Filters and data are stored
// as jsonb; data has already been validated against the report type.
func (s *Postgres) SaveReport(ctx context.Context, r *models.Report) error {
	filters, err := json.Marshal(r.Filters)
	if err != nil {
		return fmt.Errorf("marshal filters: %w", err)
	}
	query := `
		INSERT INTO reports (id, type, generated_by, filters, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query, r.ID, r.Type, r.GeneratedBy, filters, r.Data, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetReport loads a persisted snapshot by id.
func (s *Postgres) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	var filters []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, type, generated_by, filters, data, created_at FROM reports WHERE id = $1
	`, id).Scan(&r.ID, &r.Type, &r.GeneratedBy, &filters, &r.Data, &r.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	if err := json.Unmarshal(filters, &r.Filters); err != nil {
		return nil, fmt.Errorf("unmarshal filters: %w", err)
	}
	return &r, nil
}

// ComplaintStats aggregates complaints, optionally scoped to a district
// and/or sector. Average resolution time is resolved minus created, in hours.
func (s *Postgres) ComplaintStats(ctx context.Context, district, sector string) (*models.ComplaintReportData, error) {
	var data models.ComplaintReportData

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE escalation_level >= 1),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0)
				FILTER (WHERE resolved_at IS NOT NULL), 0)
		FROM complaints
		WHERE ($1 = '' OR district = $1) AND ($2 = '' OR sector = $2)
	`, district, sector).Scan(&data.Total, &data.Escalated, &data.Resolved, &data.AvgResolutionHours)
	if err != nil {
		return nil, fmt.Errorf("complaint stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM complaints
		WHERE ($1 = '' OR district = $1) AND ($2 = '' OR sector = $2)
		GROUP BY status ORDER BY status
	`, district, sector)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		data.ByStatus = append(data.ByStatus, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if data.Total > 0 {
		data.ResolutionRate = 100 * float64(data.Resolved) / float64(data.Total)
		data.EscalationRate = 100 * float64(data.Escalated) / float64(data.Total)
	}
	return &data, nil
}

// PerformanceStats aggregates complaint handling per district.
func (s *Postgres) PerformanceStats(ctx context.Context) (*models.PerformanceReportData, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT district, COUNT(*),
			COUNT(*) FILTER (WHERE status = 'resolved'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)) / 3600.0)
				FILTER (WHERE resolved_at IS NOT NULL), 0)
		FROM complaints
		GROUP BY district
		ORDER BY district
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var data models.PerformanceReportData
	for rows.Next() {
		var d models.DistrictPerformance
		if err := rows.Scan(&d.District, &d.Total, &d.Resolved, &d.AvgResolutionHours); err != nil {
			return nil, err
		}
		if d.Total > 0 {
			d.ResolutionRate = 100 * float64(d.Resolved) / float64(d.Total)
		}
		data.Districts = append(data.Districts, d)
	}
	return &data, rows.Err()
}

// EngagementStats counts community activity across the whole system.
func (s *Postgres) EngagementStats(ctx context.Context) (*models.EngagementReportData, error) {
	var data models.EngagementReportData
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM discussions),
			(SELECT COUNT(*) FROM discussions WHERE status = 'resolved'),
			(SELECT COUNT(*) FROM discussion_comments),
			(SELECT COUNT(*) FROM groups),
			(SELECT COUNT(*) FROM group_members),
			(SELECT COUNT(*) FROM announcements)
	`).Scan(&data.Discussions, &data.ResolvedDiscussions, &data.Comments,
		&data.Groups, &data.GroupMemberships, &data.Announcements)
	if err != nil {
		return nil, fmt.Errorf("engagement stats: %w", err)
	}
	return &data, nil
}
