package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
)

// Service exposes coupon management and redemption lookups.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context, params ListQuery) ([]models.Coupon, *pagination.Cursor, error)
	Resolve(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a coupon service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// CreateInput captures the payload for a new coupon.
type CreateInput struct {
	Code            string
	Description     *string
	Kind            enums.CouponKind
	Value           int64
	ExpiresAt       time.Time
	EligibleItemIDs []string
	IsActive        bool
}

// UpdateInput carries partial coupon updates. Nil fields keep their stored
// value.
type UpdateInput struct {
	Description     *string
	Kind            *enums.CouponKind
	Value           *int64
	ExpiresAt       *time.Time
	EligibleItemIDs *[]string
	IsActive        *bool
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if err := validateKindValue(input.Kind, input.Value); err != nil {
		return nil, err
	}
	if input.ExpiresAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon expiry is required")
	}

	coupon := &models.Coupon{
		Code:            code,
		Description:     input.Description,
		Kind:            input.Kind,
		Value:           input.Value,
		ExpiresAt:       input.ExpiresAt.UTC(),
		EligibleItemIDs: append([]string{}, input.EligibleItemIDs...),
		IsActive:        input.IsActive,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Coupon, error) {
	coupon, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		coupon.Description = input.Description
	}
	if input.Kind != nil {
		coupon.Kind = *input.Kind
	}
	if input.Value != nil {
		coupon.Value = *input.Value
	}
	if err := validateKindValue(coupon.Kind, coupon.Value); err != nil {
		return nil, err
	}
	if input.ExpiresAt != nil {
		coupon.ExpiresAt = input.ExpiresAt.UTC()
	}
	if input.EligibleItemIDs != nil {
		coupon.EligibleItemIDs = append([]string{}, (*input.EligibleItemIDs)...)
	}
	if input.IsActive != nil {
		coupon.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return coupon, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context, params ListQuery) ([]models.Coupon, *pagination.Cursor, error) {
	coupons, cursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return coupons, cursor, nil
}

// Resolve looks up an applicable coupon by user-entered code. Unknown codes,
// deactivated coupons, and expired coupons all reject so the storefront can
// tell the customer why; eligibility against the cart is the caller's concern.
func (s *service) Resolve(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if now.IsZero() {
		now = s.now()
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if !coupon.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon is no longer active")
	}
	if coupon.ExpiresAt.Before(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	return coupon, nil
}

func validateKindValue(kind enums.CouponKind, value int64) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon kind")
	}
	if value <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if kind == enums.CouponKindPercentage && value > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage value cannot exceed 100")
	}
	return nil
}
