package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/internal/variants"
	"github.com/saigonmart/backend/pkg/db"
	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
	"github.com/saigonmart/backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog browsing and administration.
type Service interface {
	ListProducts(ctx context.Context, params ListProductsQuery) ([]models.Product, *pagination.Cursor, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Quote(ctx context.Context, slug string, selection types.Selection) (*Quote, error)
	Combinations(ctx context.Context, productID uuid.UUID) ([]CombinationRow, error)

	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ReplaceOptions(ctx context.Context, productID uuid.UUID, inputs []OptionInput) (*models.Product, error)
	ReplaceRules(ctx context.Context, productID uuid.UUID, inputs []RuleInput) (*models.Product, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Quote is the server-side price and availability for one variant selection.
type Quote struct {
	ProductID    uuid.UUID             `json:"product_id"`
	Selection    types.Selection       `json:"selection"`
	UnitPrice    int64                 `json:"unit_price"`
	Availability variants.Availability `json:"availability"`
}

// CombinationRow is one cell of the admin availability matrix.
type CombinationRow struct {
	Selection    types.Selection       `json:"selection"`
	UnitPrice    int64                 `json:"unit_price"`
	Availability variants.Availability `json:"availability"`
}

// ProductInput captures the payload for creating or updating a product.
type ProductInput struct {
	Slug           string
	Name           string
	Description    *string
	CategoryID     *uuid.UUID
	BasePrice      int64
	CompareAtPrice *int64
	ImageKeys      []string
	IsActive       bool
	IsFeatured     bool
}

// OptionInput describes one variant axis in a replace-options payload.
type OptionInput struct {
	Name     string
	Position int
	Required bool
	Values   []ValueInput
}

// ValueInput describes one choice within an option.
type ValueInput struct {
	Label      string
	PriceDelta int64
	Position   int
	ImageKey   *string
}

// RuleInput describes one combination rule in a replace-rules payload.
type RuleInput struct {
	Combination     types.Selection
	Available       bool
	Reason          *string
	PriceAdjustment *int64
	Position        int
}

// CategoryInput captures the payload for a category.
type CategoryInput struct {
	Slug     string
	Name     string
	Position int
}

func (s *service) ListProducts(ctx context.Context, params ListProductsQuery) ([]models.Product, *pagination.Cursor, error) {
	products, cursor, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, cursor, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// Quote prices one selection against the stored variant definition. Unknown
// selection pairs degrade to zero contribution rather than failing, so the
// storefront always gets an answer for a product that exists.
func (s *service) Quote(ctx context.Context, slug string, selection types.Selection) (*Quote, error) {
	product, err := s.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return &Quote{
		ProductID:    product.ID,
		Selection:    selection.Clone(),
		UnitPrice:    variants.CalculatePrice(product.BasePrice, selection, product.Options, product.Rules),
		Availability: variants.CheckAvailability(selection, product.Rules),
	}, nil
}

// Combinations enumerates every selectable combination with its price and
// availability, for the admin rule-toggle matrix.
func (s *service) Combinations(ctx context.Context, productID uuid.UUID) ([]CombinationRow, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	combos := variants.Enumerate(product.Options)
	rows := make([]CombinationRow, 0, len(combos))
	for _, combo := range combos {
		rows = append(rows, CombinationRow{
			Selection:    combo,
			UnitPrice:    variants.CalculatePrice(product.BasePrice, combo, product.Options, product.Rules),
			Availability: variants.CheckAvailability(combo, product.Rules),
		})
	}
	return rows, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Slug:           normalizeSlug(input.Slug),
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		CategoryID:     input.CategoryID,
		BasePrice:      input.BasePrice,
		CompareAtPrice: input.CompareAtPrice,
		ImageKeys:      append([]string{}, input.ImageKeys...),
		IsActive:       input.IsActive,
		IsFeatured:     input.IsFeatured,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Slug = normalizeSlug(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.CategoryID = input.CategoryID
	product.BasePrice = input.BasePrice
	product.CompareAtPrice = input.CompareAtPrice
	product.ImageKeys = append([]string{}, input.ImageKeys...)
	product.IsActive = input.IsActive
	product.IsFeatured = input.IsFeatured

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProductByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

// ReplaceOptions swaps the product's entire variant definition atomically.
// Granular per-value edits are not offered: the admin editor always submits
// the full set, which keeps positions and option names consistent.
func (s *service) ReplaceOptions(ctx context.Context, productID uuid.UUID, inputs []OptionInput) (*models.Product, error) {
	if _, err := s.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	options := make([]models.VariantOption, 0, len(inputs))
	for i, input := range inputs {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "option name is required")
		}
		if _, dup := seen[name]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate option name %q", name))
		}
		seen[name] = struct{}{}

		option := models.VariantOption{
			Name:     name,
			Position: positionOr(input.Position, i),
			Required: input.Required,
		}
		for j, v := range input.Values {
			label := strings.TrimSpace(v.Label)
			if label == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "value label is required")
			}
			option.Values = append(option.Values, models.VariantValue{
				Label:      label,
				PriceDelta: v.PriceDelta,
				Position:   positionOr(v.Position, j),
				ImageKey:   v.ImageKey,
			})
		}
		options = append(options, option)
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceOptions(ctx, productID, options)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace options")
	}
	return s.GetProductByID(ctx, productID)
}

// ReplaceRules swaps the product's combination rules atomically. Position
// is the tie-breaker availability checks honor, so table order is preserved.
func (s *service) ReplaceRules(ctx context.Context, productID uuid.UUID, inputs []RuleInput) (*models.Product, error) {
	if _, err := s.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	rules := make([]models.CombinationRule, 0, len(inputs))
	for i, input := range inputs {
		if len(input.Combination) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rule combination cannot be empty")
		}
		rules = append(rules, models.CombinationRule{
			Combination:     input.Combination.Clone(),
			Available:       input.Available,
			Reason:          input.Reason,
			PriceAdjustment: input.PriceAdjustment,
			Position:        positionOr(input.Position, i),
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).ReplaceRules(ctx, productID, rules)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace rules")
	}
	return s.GetProductByID(ctx, productID)
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}
	category := &models.Category{
		Slug:     normalizeSlug(input.Slug),
		Name:     strings.TrimSpace(input.Name),
		Position: input.Position,
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*models.Category, error) {
	if err := validateCategoryInput(input); err != nil {
		return nil, err
	}
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}

	category.Slug = normalizeSlug(input.Slug)
	category.Name = strings.TrimSpace(input.Name)
	category.Position = input.Position

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.BasePrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "base price cannot be negative")
	}
	if input.CompareAtPrice != nil && *input.CompareAtPrice < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "compare-at price cannot be negative")
	}
	return nil
}

func validateCategoryInput(input CategoryInput) error {
	if strings.TrimSpace(input.Slug) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func positionOr(position, fallback int) int {
	if position > 0 {
		return position
	}
	return fallback
}
