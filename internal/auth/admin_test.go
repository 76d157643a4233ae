package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/saigonmart/backend/pkg/auth"
	"github.com/saigonmart/backend/pkg/config"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/security"
)

type memAdminRepo struct {
	byEmail map[string]*models.AdminUser
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{byEmail: map[string]*models.AdminUser{}}
}

func (m *memAdminRepo) Create(ctx context.Context, admin *models.AdminUser) error {
	admin.ID = uuid.New()
	m.byEmail[admin.Email] = admin
	return nil
}

func (m *memAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if admin, ok := m.byEmail[email]; ok {
		return admin, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAdminRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.byEmail)), nil
}

func passwordConfig() config.PasswordConfig {
	// minimal argon cost to keep the suite fast
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newAdminFixture(t *testing.T) (*AdminService, *memAdminRepo, *memSessions) {
	t.Helper()

	repo := newMemAdminRepo()
	sessions := &memSessions{}
	svc := &AdminService{
		repo:        repo,
		sessions:    sessions,
		jwtCfg:      jwtConfig(),
		passwordCfg: passwordConfig(),
		now:         time.Now,
	}

	hash, err := security.HashPassword("s3cret-pass", passwordConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &models.AdminUser{
		Email:        "ops@saigonmart.vn",
		PasswordHash: hash,
		Name:         "Ops",
		IsActive:     true,
	}))

	return svc, repo, sessions
}

func TestAdminLogin(t *testing.T) {
	svc, _, sessions := newAdminFixture(t)

	result, err := svc.Login(context.Background(), " Ops@SaigonMart.vn ", "s3cret-pass")
	require.NoError(t, err)
	require.Len(t, sessions.created, 1)

	claims, err := pkgauth.ParseAccessToken(jwtConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, enums.ActorRoleAdmin, claims.Role)
	assert.Equal(t, result.Admin.ID, claims.SubjectID)
}

func TestAdminLoginRejections(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)

	_, err := svc.Login(context.Background(), "ops@saigonmart.vn", "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(context.Background(), "nobody@saigonmart.vn", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	repo.byEmail["ops@saigonmart.vn"].IsActive = false
	_, err = svc.Login(context.Background(), "ops@saigonmart.vn", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestAdminBootstrap(t *testing.T) {
	repo := newMemAdminRepo()
	svc := &AdminService{
		repo:        repo,
		sessions:    &memSessions{},
		jwtCfg:      jwtConfig(),
		passwordCfg: passwordConfig(),
		now:         time.Now,
	}

	require.NoError(t, svc.Bootstrap(context.Background(), "Boss@SaigonMart.vn", "first-pass", ""))
	admin, ok := repo.byEmail["boss@saigonmart.vn"]
	require.True(t, ok)
	assert.Equal(t, "Administrator", admin.Name)

	ok2, err := security.VerifyPassword("first-pass", admin.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok2)

	// second run is a no-op once an admin exists
	require.NoError(t, svc.Bootstrap(context.Background(), "other@saigonmart.vn", "x", ""))
	assert.Len(t, repo.byEmail, 1)

	// missing credentials: nothing created
	empty := newMemAdminRepo()
	svc.repo = empty
	require.NoError(t, svc.Bootstrap(context.Background(), "", "", ""))
	assert.Empty(t, empty.byEmail)
}
