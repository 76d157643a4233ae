package customers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
)

// phones are stored E.164; Vietnamese local format (0xxxxxxxxx) is
// normalized to +84 on the way in.
var e164Pattern = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// Repository handles customer persistence.
type Repository interface {
	Create(ctx context.Context, customer *models.Customer) error
	Update(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
	List(ctx context.Context, params ListQuery) ([]models.Customer, *pagination.Cursor, error)
}

// ListQuery configures customer list queries.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
	// Search matches against phone and name.
	Search string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) Update(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Customer, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Customer{})
	if search := strings.TrimSpace(params.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("phone LIKE ? OR LOWER(COALESCE(name, '')) LIKE ?", pattern, pattern)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var customers []models.Customer
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&customers).Error; err != nil {
		return nil, nil, err
	}

	if len(customers) > limit {
		next := customers[limit]
		customers = customers[:limit]
		return customers, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return customers, nil, nil
}

// Service exposes customer lookups, profile edits, and the login-time upsert.
type Service interface {
	UpsertByPhone(ctx context.Context, phone string, loginAt time.Time) (*models.Customer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.Customer, error)
	List(ctx context.Context, params ListQuery) ([]models.Customer, *pagination.Cursor, error)
}

type service struct {
	repo Repository
}

// NewService builds a customer service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

// ProfileInput carries the self-service editable fields.
type ProfileInput struct {
	Name    *string
	Address *string
}

// NormalizePhone converts user input to E.164, accepting the Vietnamese
// local 0-prefix form.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))

	if strings.HasPrefix(cleaned, "0") && len(cleaned) >= 9 {
		cleaned = "+84" + cleaned[1:]
	}
	if !e164Pattern.MatchString(cleaned) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number")
	}
	return cleaned, nil
}

// UpsertByPhone returns the customer for a verified phone, creating the
// record on first login and stamping last_login_at either way.
func (s *service) UpsertByPhone(ctx context.Context, phone string, loginAt time.Time) (*models.Customer, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if loginAt.IsZero() {
		loginAt = time.Now()
	}
	loginAt = loginAt.UTC()

	customer, err := s.repo.FindByPhone(ctx, normalized)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		customer = &models.Customer{
			Phone:       normalized,
			LastLoginAt: &loginAt,
		}
		if err := s.repo.Create(ctx, customer); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
		}
		return customer, nil
	}

	customer.LastLoginAt = &loginAt
	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return customer, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			customer.Name = nil
		} else {
			customer.Name = &trimmed
		}
	}
	if input.Address != nil {
		trimmed := strings.TrimSpace(*input.Address)
		if trimmed == "" {
			customer.Address = nil
		} else {
			customer.Address = &trimmed
		}
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return customer, nil
}

func (s *service) List(ctx context.Context, params ListQuery) ([]models.Customer, *pagination.Cursor, error) {
	customers, cursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return customers, cursor, nil
}
