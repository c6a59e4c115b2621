package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ijwi/citizen-server/internal/apperr"
	"github.com/ijwi/citizen-server/internal/auth"
	"github.com/ijwi/citizen-server/internal/models"
	"github.com/ijwi/citizen-server/internal/store"
)

type fakeUserStore struct {
	users   map[uuid.UUID]*models.User
	byEmail map[string]*models.User
	groups  []models.Group
	members []models.GroupMember
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	if _, exists := f.byEmail[u.Email]; exists {
		return store.ErrDuplicate
	}
	cp := *u
	f.users[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) CountUsers(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) UpdateUserRole(_ context.Context, id uuid.UUID, role models.Role, loc *models.Location) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Role = role
	if loc != nil {
		u.Location = *loc
	}
	return nil
}

func (f *fakeUserStore) ListGroupsByLocation(_ context.Context, district, sector string) ([]models.Group, error) {
	var out []models.Group
	for _, g := range f.groups {
		if g.Location.District == district && (sector == "" || g.Location.Sector == sector) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeUserStore) AddMember(_ context.Context, m *models.GroupMember) error {
	for _, existing := range f.members {
		if existing.GroupID == m.GroupID && existing.UserID == m.UserID {
			return store.ErrDuplicate
		}
	}
	f.members = append(f.members, *m)
	return nil
}

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	resets     int
}

func (f *fakeLimiter) Check(context.Context, string) (bool, time.Duration, error) {
	return f.allowed, f.retryAfter, nil
}
func (f *fakeLimiter) Reset(context.Context, string) error { f.resets++; return nil }

func newUserService(st UserStore, limiter AttemptLimiter) *UserService {
	return NewUserService(st, limiter, "test-secret", time.Hour, zap.NewNop().Sugar())
}

func TestRegisterRejectsElevatedRole(t *testing.T) {
	svc := newUserService(newFakeUserStore(), &fakeLimiter{allowed: true})

	for _, role := range []string{"sector_admin", "district_admin", "super_admin"} {
		_, err := svc.Register(context.Background(), &models.RegisterRequest{
			Name:     "Eve",
			Email:    "eve@example.rw",
			Password: "hunter2hunter2",
			Role:     role,
			Location: remera,
		})
		requireStatus(t, err, http.StatusForbidden)
	}
}

func TestRegisterAutoEnrollsMatchingGroups(t *testing.T) {
	st := newFakeUserStore()
	matching := models.Group{ID: uuid.New(), Name: "Remera residents", Location: remera}
	elsewhere := models.Group{ID: uuid.New(), Name: "Niboye residents", Location: niboye}
	st.groups = []models.Group{matching, elsewhere}
	svc := newUserService(st, &fakeLimiter{allowed: true})

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Alice",
		Email:    "alice@example.rw",
		Password: "correct-horse-battery",
		Location: remera,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleCitizen, user.Role)
	require.NotEmpty(t, user.PasswordHash)

	require.Len(t, st.members, 1)
	require.Equal(t, matching.ID, st.members[0].GroupID)
	require.Equal(t, user.ID, st.members[0].UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	st := newFakeUserStore()
	svc := newUserService(st, &fakeLimiter{allowed: true})

	req := &models.RegisterRequest{
		Name:     "Bob",
		Email:    "bob@example.rw",
		Password: "password123",
		Location: remera,
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	st := newFakeUserStore()
	svc := newUserService(st, &fakeLimiter{allowed: true})

	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Carol",
		Email:    "carol@example.rw",
		Password: "s3cure-enough",
		Location: remera,
	})
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.rw", Password: "whatever",
	})
	_, _, wrongErr := svc.Login(context.Background(), &models.LoginRequest{
		Email: "carol@example.rw", Password: "not-the-password",
	})

	requireStatus(t, unknownErr, http.StatusUnauthorized)
	requireStatus(t, wrongErr, http.StatusUnauthorized)
	require.Equal(t, unknownErr.Error(), wrongErr.Error(), "failures must not reveal which field was wrong")
}

func TestLoginIssuesUsableToken(t *testing.T) {
	st := newFakeUserStore()
	limiter := &fakeLimiter{allowed: true}
	svc := newUserService(st, limiter)

	user, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Dan",
		Email:    "dan@example.rw",
		Password: "a-long-passphrase",
		Location: remera,
	})
	require.NoError(t, err)

	token, logged, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "dan@example.rw", Password: "a-long-passphrase",
	})
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.Equal(t, 1, limiter.resets)

	subject, err := auth.ParseToken([]byte("test-secret"), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, subject)
}

func TestLoginRateLimited(t *testing.T) {
	svc := newUserService(newFakeUserStore(), &fakeLimiter{allowed: false, retryAfter: 9 * time.Minute})

	_, _, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "anyone@example.rw", Password: "whatever",
	})
	requireStatus(t, err, http.StatusTooManyRequests)
	require.True(t, strings.Contains(err.Error(), "540"), "hint carries the limiter's remaining window")

	e := apperr.From(err)
	require.NotNil(t, e)
	require.Equal(t, 540, e.RetryAfter)
}

func TestUpdateRoleRankRules(t *testing.T) {
	st := newFakeUserStore()
	svc := newUserService(st, &fakeLimiter{allowed: true})

	citizen, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name:     "Frank",
		Email:    "frank@example.rw",
		Password: "password123",
		Location: remera,
	})
	require.NoError(t, err)

	super := testUser(models.RoleSuperAdmin, models.Location{Province: "Kigali"})
	districtAdmin := testUser(models.RoleDistrictAdmin, models.Location{Province: "Kigali", District: "Gasabo"})

	// A district admin can promote a citizen to sector admin.
	updated, err := svc.UpdateRole(context.Background(), districtAdmin, citizen.ID, &models.UpdateRoleRequest{
		Role: "sector_admin", Location: &remera,
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleSectorAdmin, updated.Role)

	// But cannot promote to their own rank.
	_, err = svc.UpdateRole(context.Background(), districtAdmin, citizen.ID, &models.UpdateRoleRequest{
		Role: "district_admin",
	})
	requireStatus(t, err, http.StatusForbidden)

	// A super admin can.
	updated, err = svc.UpdateRole(context.Background(), super, citizen.ID, &models.UpdateRoleRequest{
		Role: "district_admin",
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleDistrictAdmin, updated.Role)

	// Unknown roles are rejected before any lookup.
	_, err = svc.UpdateRole(context.Background(), super, citizen.ID, &models.UpdateRoleRequest{
		Role: "emperor",
	})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestBootstrapOnlyOnEmptyTable(t *testing.T) {
	st := newFakeUserStore()
	svc := newUserService(st, &fakeLimiter{allowed: true})

	admin, err := svc.Bootstrap(context.Background(), "Root", "root@example.rw", "init-password", models.Location{Province: "Kigali"})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, admin.Role)

	_, err = svc.Bootstrap(context.Background(), "Root2", "root2@example.rw", "init-password", models.Location{Province: "Kigali"})
	requireStatus(t, err, http.StatusForbidden)
}
