package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

const userColumns = `id, name, email, password_hash, role, province, district, sector, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Location.Province, &u.Location.District, &u.Location.Sector, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// CreateUser inserts a new user. Returns ErrDuplicate on a taken email.
func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, province, district, sector, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.pool.Exec(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.Location.Province, u.Location.District, u.Location.Sector, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	return nil
}

// GetUserByEmail looks up a user by unique email.
func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// GetUserByID looks up a user by id.
func (s *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// CountUsers returns the total number of accounts.
func (s *Postgres) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// UpdateUserRole changes a user's role and, when loc is non-nil, their
// assigned location.
func (s *Postgres) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, loc *models.Location) error {
	var err error
	if loc != nil {
		_, err = s.pool.Exec(ctx,
			`UPDATE users SET role = $2, province = $3, district = $4, sector = $5 WHERE id = $1`,
			id, role, loc.Province, loc.District, loc.Sector)
	} else {
		_, err = s.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	}
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return nil
}

// FindSectorAdmin returns a sector admin assigned to the given district and
// sector. When several match, an arbitrary first match is returned; no
// tie-break is defined for this lookup.
func (s *Postgres) FindSectorAdmin(ctx context.Context, district, sector string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE role = $1 AND district = $2 AND sector = $3
		LIMIT 1`
	return scanUser(s.pool.QueryRow(ctx, query, models.RoleSectorAdmin, district, sector))
}

// FindDistrictAdmin returns a district admin assigned to the given district,
// matched literally on the district name. Same arbitrary-first-match caveat
// as FindSectorAdmin.
func (s *Postgres) FindDistrictAdmin(ctx context.Context, district string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE role = $1 AND district = $2
		LIMIT 1`
	return scanUser(s.pool.QueryRow(ctx, query, models.RoleDistrictAdmin, district))
}
