package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
)

type stubRepo struct {
	createFn     func(ctx context.Context, coupon *models.Coupon) error
	findByCodeFn func(ctx context.Context, code string) (*models.Coupon, error)
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	updateFn     func(ctx context.Context, coupon *models.Coupon) error
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }
func (s *stubRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	if s.createFn != nil {
		return s.createFn(ctx, coupon)
	}
	return nil
}
func (s *stubRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, coupon)
	}
	return nil
}
func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (s *stubRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if s.findByCodeFn != nil {
		return s.findByCodeFn(ctx, code)
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepo) FindExpiredActive(ctx context.Context, cutoff time.Time) ([]models.Coupon, error) {
	return nil, nil
}
func (s *stubRepo) List(ctx context.Context, params ListQuery) ([]models.Coupon, *pagination.Cursor, error) {
	return nil, nil, nil
}

func TestServiceCreateNormalizesCode(t *testing.T) {
	var saved *models.Coupon
	svc, err := NewService(&stubRepo{
		createFn: func(_ context.Context, coupon *models.Coupon) error {
			saved = coupon
			return nil
		},
	})
	require.NoError(t, err)

	coupon, err := svc.Create(context.Background(), CreateInput{
		Code:      " tet2026 ",
		Kind:      enums.CouponKindPercentage,
		Value:     15,
		ExpiresAt: time.Now().Add(time.Hour),
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "TET2026", coupon.Code)
	require.NotNil(t, saved)
	assert.Equal(t, "TET2026", saved.Code)
}

func TestServiceCreateRejectsBadInputs(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	cases := []CreateInput{
		{Code: "", Kind: enums.CouponKindFixed, Value: 1, ExpiresAt: time.Now()},
		{Code: "A", Kind: enums.CouponKind("bogus"), Value: 1, ExpiresAt: time.Now()},
		{Code: "A", Kind: enums.CouponKindFixed, Value: 0, ExpiresAt: time.Now()},
		{Code: "A", Kind: enums.CouponKindPercentage, Value: 150, ExpiresAt: time.Now()},
		{Code: "A", Kind: enums.CouponKindFixed, Value: 1},
	}
	for _, input := range cases {
		_, err := svc.Create(context.Background(), input)
		require.Error(t, err, "input %+v", input)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestServiceResolveCaseInsensitive(t *testing.T) {
	stored := &models.Coupon{
		Code:      "FREESHIP",
		Kind:      enums.CouponKindFixed,
		Value:     30000,
		ExpiresAt: time.Now().Add(time.Hour),
		IsActive:  true,
	}
	svc, err := NewService(&stubRepo{
		findByCodeFn: func(_ context.Context, code string) (*models.Coupon, error) {
			if code == "FREESHIP" {
				return stored, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	})
	require.NoError(t, err)

	coupon, err := svc.Resolve(context.Background(), "freeship", time.Now())
	require.NoError(t, err)
	assert.Equal(t, stored, coupon)
}

func TestServiceResolveRejections(t *testing.T) {
	now := time.Now()
	expired := &models.Coupon{Code: "OLD", Kind: enums.CouponKindFixed, Value: 1, ExpiresAt: now.Add(-time.Hour), IsActive: true}
	inactive := &models.Coupon{Code: "OFF", Kind: enums.CouponKindFixed, Value: 1, ExpiresAt: now.Add(time.Hour), IsActive: false}

	svc, err := NewService(&stubRepo{
		findByCodeFn: func(_ context.Context, code string) (*models.Coupon, error) {
			switch code {
			case "OLD":
				return expired, nil
			case "OFF":
				return inactive, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	})
	require.NoError(t, err)

	_, err = svc.Resolve(context.Background(), "missing", now)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.Resolve(context.Background(), "old", now)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Resolve(context.Background(), "off", now)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceUpdateRevalidatesKindValue(t *testing.T) {
	stored := &models.Coupon{
		ID:        uuid.New(),
		Code:      "TET2026",
		Kind:      enums.CouponKindPercentage,
		Value:     15,
		ExpiresAt: time.Now().Add(time.Hour),
		IsActive:  true,
	}
	svc, err := NewService(&stubRepo{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Coupon, error) {
			if id == stored.ID {
				copy := *stored
				return &copy, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	})
	require.NoError(t, err)

	bad := int64(150)
	_, err = svc.Update(context.Background(), stored.ID, UpdateInput{Value: &bad})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	good := int64(20)
	updated, err := svc.Update(context.Background(), stored.ID, UpdateInput{Value: &good})
	require.NoError(t, err)
	assert.Equal(t, int64(20), updated.Value)
}
