package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
)

type stubRepo struct {
	stored *models.StoreSettings
	findFn func(ctx context.Context) (*models.StoreSettings, error)
}

func (s *stubRepo) Find(ctx context.Context) (*models.StoreSettings, error) {
	if s.findFn != nil {
		return s.findFn(ctx)
	}
	if s.stored == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.stored, nil
}

func (s *stubRepo) Save(ctx context.Context, settings *models.StoreSettings) error {
	s.stored = settings
	return nil
}

func TestGetMissingRow(t *testing.T) {
	svc, err := NewService(&stubRepo{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestUpdateValidatesInput(t *testing.T) {
	svc, err := NewService(&stubRepo{stored: &models.StoreSettings{StoreName: "Saigon Mart"}})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), UpdateInput{StoreName: "  "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Update(context.Background(), UpdateInput{StoreName: "Saigon Mart", ShippingFee: -1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUpdatePersists(t *testing.T) {
	repo := &stubRepo{stored: &models.StoreSettings{StoreName: "Saigon Mart", Currency: "VND"}}
	svc, err := NewService(repo)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), UpdateInput{
		StoreName:             "Saigon Mart",
		ShippingFee:           25000,
		FreeShippingThreshold: 300000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), updated.ShippingFee)
	assert.Equal(t, "VND", updated.Currency)
	assert.Same(t, repo.stored, updated)
}

func TestShippingFeeFor(t *testing.T) {
	settings := &models.StoreSettings{ShippingFee: 25000, FreeShippingThreshold: 300000}

	assert.Equal(t, int64(25000), ShippingFeeFor(settings, 299999))
	assert.Equal(t, int64(0), ShippingFeeFor(settings, 300000))

	// zero threshold disables free shipping entirely
	settings.FreeShippingThreshold = 0
	assert.Equal(t, int64(25000), ShippingFeeFor(settings, 1000000))

	assert.Equal(t, int64(0), ShippingFeeFor(nil, 100))
}
