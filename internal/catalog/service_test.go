package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
	"github.com/saigonmart/backend/pkg/types"
)

type stubRepo struct {
	findBySlugFn func(ctx context.Context, slug string) (*models.Product, error)
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository                                 { return s }
func (s *stubRepo) CreateProduct(ctx context.Context, product *models.Product) error { return nil }
func (s *stubRepo) UpdateProduct(ctx context.Context, product *models.Product) error { return nil }
func (s *stubRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error            { return nil }
func (s *stubRepo) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findByIDFn != nil {
		return s.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepo) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if s.findBySlugFn != nil {
		return s.findBySlugFn(ctx, slug)
	}
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepo) ListProducts(ctx context.Context, params ListProductsQuery) ([]models.Product, *pagination.Cursor, error) {
	return nil, nil, nil
}
func (s *stubRepo) ReplaceOptions(ctx context.Context, productID uuid.UUID, options []models.VariantOption) error {
	return nil
}
func (s *stubRepo) ReplaceRules(ctx context.Context, productID uuid.UUID, rules []models.CombinationRule) error {
	return nil
}
func (s *stubRepo) CreateCategory(ctx context.Context, category *models.Category) error { return nil }
func (s *stubRepo) UpdateCategory(ctx context.Context, category *models.Category) error { return nil }
func (s *stubRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error              { return nil }
func (s *stubRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func strPtr(s string) *string { return &s }

func sampleProduct() *models.Product {
	sizeOption := uuid.New()
	small := uuid.New()
	medium := uuid.New()
	return &models.Product{
		ID:        uuid.New(),
		Slug:      "banh-mi-thit",
		Name:      "Bánh mì thịt",
		BasePrice: 100000,
		IsActive:  true,
		Options: []models.VariantOption{
			{
				ID:   sizeOption,
				Name: "Size",
				Values: []models.VariantValue{
					{ID: small, OptionID: sizeOption, Label: "S", PriceDelta: 0},
					{ID: medium, OptionID: sizeOption, Label: "M", PriceDelta: 20000},
				},
			},
		},
	}
}

func newTestService(repo Repository) Service {
	svc, err := NewService(repo, stubTx{})
	if err != nil {
		panic(err)
	}
	return svc
}

func TestQuotePricesSelection(t *testing.T) {
	product := sampleProduct()
	medium := product.Options[0].Values[1].ID
	svc := newTestService(&stubRepo{
		findBySlugFn: func(_ context.Context, slug string) (*models.Product, error) {
			if slug == product.Slug {
				return product, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	})

	quote, err := svc.Quote(context.Background(), product.Slug, types.Selection{"Size": medium.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), quote.UnitPrice)
	assert.True(t, quote.Availability.Available)
}

func TestQuoteBlockedCombination(t *testing.T) {
	product := sampleProduct()
	medium := product.Options[0].Values[1].ID
	product.Rules = []models.CombinationRule{
		{
			Combination: types.Selection{"Size": medium.String()},
			Available:   false,
			Reason:      strPtr("Hết hàng"),
		},
	}
	svc := newTestService(&stubRepo{
		findBySlugFn: func(_ context.Context, _ string) (*models.Product, error) {
			return product, nil
		},
	})

	quote, err := svc.Quote(context.Background(), product.Slug, types.Selection{"Size": medium.String()})
	require.NoError(t, err)
	assert.False(t, quote.Availability.Available)
	assert.Equal(t, "Hết hàng", quote.Availability.Reason)
	// the blocking rule carries no custom adjustment, price still computes
	assert.Equal(t, int64(120000), quote.UnitPrice)
}

func TestQuoteInactiveProductHidden(t *testing.T) {
	product := sampleProduct()
	product.IsActive = false
	svc := newTestService(&stubRepo{
		findBySlugFn: func(_ context.Context, _ string) (*models.Product, error) {
			return product, nil
		},
	})

	_, err := svc.Quote(context.Background(), product.Slug, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCombinationsMatrix(t *testing.T) {
	product := sampleProduct()
	medium := product.Options[0].Values[1].ID
	product.Rules = []models.CombinationRule{
		{
			Combination: types.Selection{"Size": medium.String()},
			Available:   false,
			Reason:      strPtr("Hết hàng"),
		},
	}
	svc := newTestService(&stubRepo{
		findByIDFn: func(_ context.Context, id uuid.UUID) (*models.Product, error) {
			if id == product.ID {
				return product, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	})

	rows, err := svc.Combinations(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(100000), rows[0].UnitPrice)
	assert.True(t, rows[0].Availability.Available)

	assert.Equal(t, int64(120000), rows[1].UnitPrice)
	assert.False(t, rows[1].Availability.Available)
	assert.Equal(t, "Hết hàng", rows[1].Availability.Reason)
}

func TestReplaceOptionsRejectsDuplicates(t *testing.T) {
	product := sampleProduct()
	svc := newTestService(&stubRepo{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Product, error) {
			return product, nil
		},
	})

	_, err := svc.ReplaceOptions(context.Background(), product.ID, []OptionInput{
		{Name: "Size"},
		{Name: " Size "},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestReplaceRulesRejectsEmptyCombination(t *testing.T) {
	product := sampleProduct()
	svc := newTestService(&stubRepo{
		findByIDFn: func(_ context.Context, _ uuid.UUID) (*models.Product, error) {
			return product, nil
		},
	})

	_, err := svc.ReplaceRules(context.Background(), product.ID, []RuleInput{
		{Combination: types.Selection{}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateProductValidation(t *testing.T) {
	svc := newTestService(&stubRepo{})

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "x", BasePrice: 1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.CreateProduct(context.Background(), ProductInput{Slug: "x", Name: "x", BasePrice: -1})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateProductNormalizesSlug(t *testing.T) {
	svc := newTestService(&stubRepo{})

	product, err := svc.CreateProduct(context.Background(), ProductInput{
		Slug:      " Banh-Mi-Thit ",
		Name:      "Bánh mì thịt",
		BasePrice: 100000,
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "banh-mi-thit", product.Slug)
}
