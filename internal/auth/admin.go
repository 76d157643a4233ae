package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/auth"
	"github.com/saigonmart/backend/pkg/auth/session"
	"github.com/saigonmart/backend/pkg/config"
	"github.com/saigonmart/backend/pkg/db"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/security"
)

// AdminRepository handles admin user persistence.
type AdminRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository returns an admin repository bound to the provided database.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

func (r *adminRepository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// AdminService implements back-office password login.
type AdminService struct {
	repo        AdminRepository
	sessions    sessionCreator
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// AdminTokenResult is a successful back-office login.
type AdminTokenResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Admin     *models.AdminUser `json:"admin"`
}

// NewAdminService builds the admin login service.
func NewAdminService(repo AdminRepository, sessions *session.Manager, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig) (*AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("admin repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &AdminService{
		repo:        repo,
		sessions:    sessions,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

// Login verifies the password and issues an admin-scoped access token. The
// response does not distinguish unknown email from wrong password.
func (s *AdminService) Login(ctx context.Context, email, password string) (*AdminTokenResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	admin, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load admin user")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now().UTC()
	jti := auth.NewAccessID()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		SubjectID: admin.ID,
		Role:      enums.ActorRoleAdmin,
		Email:     admin.Email,
		JTI:       jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Create(ctx, jti); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	return &AdminTokenResult{
		Token:     token,
		ExpiresAt: now.Add(s.jwtCfg.AccessTokenTTL()),
		Admin:     admin,
	}, nil
}

// Logout revokes the session for the provided token ID.
func (s *AdminService) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// Bootstrap creates the first admin account when the table is empty. Called
// at startup with credentials from the environment; a no-op otherwise.
func (s *AdminService) Bootstrap(ctx context.Context, email, password, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admin users")
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if name == "" {
		name = "Administrator"
	}

	if err := s.repo.Create(ctx, &models.AdminUser{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
	}); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin user")
	}
	return nil
}
