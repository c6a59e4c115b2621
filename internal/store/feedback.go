package store

import (
	"context"
	"fmt"

	"github.com/ijwi/citizen-server/internal/models"
)

// CreateFeedback inserts an immutable feedback entry. There is no update or
// delete path.
func (s *Postgres) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	query := `
		INSERT INTO feedback (id, service_type, rating, comments, user_id, province, district, sector, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		f.ID, f.ServiceType, f.Rating, f.Comments, f.UserID,
		f.Location.Province, f.Location.District, f.Location.Sector, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// FeedbackStats aggregates ratings per service type, scoped to a district
// and/or sector when non-empty. Satisfaction is the share of ratings >= 4.
func (s *Postgres) FeedbackStats(ctx context.Context, district, sector string) ([]models.ServiceTypeStats, error) {
	query := `
		SELECT service_type, COUNT(*),
			ROUND(AVG(rating)::NUMERIC, 2),
			ROUND(100.0 * COUNT(*) FILTER (WHERE rating >= 4) / COUNT(*), 2)
		FROM feedback
		WHERE ($1 = '' OR district = $1) AND ($2 = '' OR sector = $2)
		GROUP BY service_type
		ORDER BY service_type
	`
	rows, err := s.pool.Query(ctx, query, district, sector)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.ServiceTypeStats
	for rows.Next() {
		var st models.ServiceTypeStats
		if err := rows.Scan(&st.ServiceType, &st.Count, &st.AverageRating, &st.SatisfactionPct); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
