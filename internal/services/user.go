// Package services contains business logic layers. Services are called by
// handlers, talk to narrow store interfaces and enqueue outbox events for
// anything connected clients should hear about.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/auth"
	"github.com/ijwi/citizen-server/internal/authz"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/store"
)

// UserStore is the storage the user service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role, loc *models.Location) error
	ListGroupsByLocation(ctx context.Context, district, sector string) ([]models.Group, error)
	AddMember(ctx context.Context, m *models.GroupMember) error
}

// AttemptLimiter throttles credential attempts per identity. When Check
// blocks an attempt, retryAfter is how much of the window remains.
type AttemptLimiter interface {
	Check(ctx context.Context, email string) (allowed bool, retryAfter time.Duration, err error)
	Reset(ctx context.Context, email string) error
}

// UserService handles registration, login and account administration.
type UserService struct {
	store    UserStore
	limiter  AttemptLimiter
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewUserService creates a new user service
func NewUserService(st UserStore, limiter AttemptLimiter, secret string, tokenTTL time.Duration, logger *zap.SugaredLogger) *UserService {
	return &UserService{store: st, limiter: limiter, secret: []byte(secret), tokenTTL: tokenTTL, logger: logger}
}

// Register creates a citizen account. Elevated roles are never granted
// through public registration; the bootstrap seed provisions the first
// admin, so a concurrent pair of registrations can not both self-elevate.
// Side effect: the new citizen is auto-enrolled into groups matching their
// location.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if req.Role != "" && req.Role != string(models.RoleCitizen) {
		return nil, apperr.Authz("elevated roles cannot be requested through registration")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleCitizen,
		Location:     req.Location,
		CreatedAt:    time.Now(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Validation("email already registered")
		}
		return nil, err
	}

	s.autoEnroll(ctx, user)

	s.logger.Infow("User registered", "id", user.ID, "sector", user.Location.Sector)
	return user, nil
}

// autoEnroll joins the citizen into every group matching their location.
// Failures are logged, not surfaced: registration has already succeeded.
func (s *UserService) autoEnroll(ctx context.Context, user *models.User) {
	groups, err := s.store.ListGroupsByLocation(ctx, user.Location.District, user.Location.Sector)
	if err != nil {
		s.logger.Errorw("Auto-enroll group lookup failed", "user_id", user.ID, "error", err)
		return
	}
	for _, g := range groups {
		member := &models.GroupMember{GroupID: g.ID, UserID: user.ID, JoinedAt: time.Now()}
		if err := s.store.AddMember(ctx, member); err != nil && !errors.Is(err, store.ErrDuplicate) {
			s.logger.Errorw("Auto-enroll failed", "user_id", user.ID, "group_id", g.ID, "error", err)
		}
	}
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password return the same generic error to avoid user enumeration.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error) {
	ok, retryAfter, err := s.limiter.Check(ctx, req.Email)
	if err != nil {
		// A broken limiter should not lock everyone out.
		s.logger.Errorw("Login limiter unavailable", "error", err)
	} else if !ok {
		return "", nil, apperr.RateLimited(int(retryAfter.Seconds()))
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return "", nil, apperr.Auth("invalid email or password")
	}

	token, err := auth.IssueToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	_ = s.limiter.Reset(ctx, req.Email)
	return token, user, nil
}

// GetByID resolves a live user record, used by the protect middleware.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Auth("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole changes a user's role/location. Only an admin ranked strictly
// above both the current and the requested role may do this.
func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, req *models.UpdateRoleRequest) (*models.User, error) {
	if !models.ValidRole(req.Role) {
		return nil, apperr.Validation("unknown role %q", req.Role)
	}

	target, err := s.store.GetUserByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}

	requested := models.Role(req.Role)
	if !authz.CanAssignRole(actor, target.Role, requested) {
		return nil, apperr.Authz("insufficient rank to assign role %q", requested)
	}

	if err := s.store.UpdateUserRole(ctx, targetID, requested, req.Location); err != nil {
		return nil, err
	}

	target.Role = requested
	if req.Location != nil {
		target.Location = *req.Location
	}

	s.logger.Infow("Role updated", "target", targetID, "role", requested, "by", actor.ID)
	return target, nil
}

// Bootstrap creates the first super admin. It refuses to run once any user
// exists, which is what keeps elevated self-registration out of the public
// endpoint.
func (s *UserService) Bootstrap(ctx context.Context, name, email, password string, loc models.Location) (*models.User, error) {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Authz("bootstrap requires an empty user table")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
		Location:     loc,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("Bootstrapped super admin", "id", user.ID, "email", email)
	return user, nil
}
