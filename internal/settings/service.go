package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
)

// Repository handles the store settings singleton.
type Repository interface {
	Find(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, settings *models.StoreSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	if err := r.db.WithContext(ctx).
		Order("updated_at DESC").
		First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Save(ctx context.Context, settings *models.StoreSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}

// Service exposes storefront settings reads and back-office edits.
type Service interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Update(ctx context.Context, input UpdateInput) (*models.StoreSettings, error)
}

type service struct {
	repo Repository
}

// NewService builds a settings service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// UpdateInput carries the editable settings fields.
type UpdateInput struct {
	StoreName             string
	ShippingFee           int64
	FreeShippingThreshold int64
	SupportPhone          *string
	Announcement          *string
}

func (s *service) Get(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.repo.Find(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the seed migration creates the row; missing means a broken install
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "store settings not initialized")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settings")
	}
	return settings, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.StoreSettings, error) {
	if strings.TrimSpace(input.StoreName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if input.ShippingFee < 0 || input.FreeShippingThreshold < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amounts cannot be negative")
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	settings.StoreName = strings.TrimSpace(input.StoreName)
	settings.ShippingFee = input.ShippingFee
	settings.FreeShippingThreshold = input.FreeShippingThreshold
	settings.SupportPhone = input.SupportPhone
	settings.Announcement = input.Announcement

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save settings")
	}
	return settings, nil
}

// ShippingFeeFor applies the free-shipping threshold to a cart subtotal.
// A zero threshold means free shipping is never granted.
func ShippingFeeFor(settings *models.StoreSettings, subtotal int64) int64 {
	if settings == nil {
		return 0
	}
	if settings.FreeShippingThreshold > 0 && subtotal >= settings.FreeShippingThreshold {
		return 0
	}
	return settings.ShippingFee
}
