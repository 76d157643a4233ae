package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/internal/coupons"
	"github.com/saigonmart/backend/internal/settings"
	"github.com/saigonmart/backend/internal/variants"
	"github.com/saigonmart/backend/pkg/db/models"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productSource interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type couponSource interface {
	Resolve(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
}

type settingsSource interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
}

// Service exposes the customer cart operations.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	Replace(ctx context.Context, customerID uuid.UUID, input ReplaceInput) (*models.CartRecord, error)
	AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error)
	UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*models.CartRecord, error)
	RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, error)
	ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*models.CartRecord, error)
	RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error)
	PreviewCoupon(ctx context.Context, code string, lines []PreviewLine) (*CouponPreview, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productSource
	coupons  couponSource
	settings settingsSource
	now      func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productSource, couponSrc couponSource, settingsSrc settingsSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if couponSrc == nil {
		return nil, fmt.Errorf("coupon source required")
	}
	if settingsSrc == nil {
		return nil, fmt.Errorf("settings source required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		coupons:  couponSrc,
		settings: settingsSrc,
		now:      time.Now,
	}, nil
}

// AddItemInput captures one line to add to the cart.
type AddItemInput struct {
	ProductID uuid.UUID
	Selection types.Selection
	Quantity  int
}

// ReplaceInput is a full cart snapshot from the client. Prices are claims the
// server re-derives and verifies, never trusts.
type ReplaceInput struct {
	CouponCode *string
	Subtotal   int64
	Total      int64
	Items      []ReplaceItemInput
}

// ReplaceItemInput is one line of a snapshot upsert.
type ReplaceItemInput struct {
	ProductID uuid.UUID
	Selection types.Selection
	Quantity  int
	UnitPrice int64
}

// PreviewLine is one line of an anonymous coupon preview payload.
type PreviewLine struct {
	ProductID uuid.UUID
	UnitPrice int64
	Quantity  int
}

// CouponPreview reports what a code would do to a given cart.
type CouponPreview struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
	Subtotal int64  `json:"subtotal"`
	Total    int64  `json:"total"`
}

// Get returns the customer's active cart, creating an empty one on first use.
func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	record, err := s.repo.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		record = &models.CartRecord{CustomerID: customerID}
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
	}
	return record, nil
}

// Replace validates a client snapshot and persists it atomically. Unit prices
// and totals are recomputed server-side; any mismatch rejects the snapshot so
// a stale client cannot lock in old prices.
func (s *service) Replace(ctx context.Context, customerID uuid.UUID, input ReplaceInput) (*models.CartRecord, error) {
	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(input.Items))
	var subtotal int64
	for _, payload := range input.Items {
		if payload.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		item, err := s.buildItem(ctx, payload.ProductID, payload.Selection, payload.Quantity)
		if err != nil {
			return nil, err
		}
		if item.UnitPrice != payload.UnitPrice {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price mismatch").
				WithDetails(map[string]any{"product_id": payload.ProductID, "unit_price": item.UnitPrice})
		}
		subtotal += item.LineSubtotal
		items = append(items, *item)
	}
	if input.Subtotal != subtotal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart subtotal mismatch")
	}

	coupon, err := s.resolveOptional(ctx, input.CouponCode)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DeleteItems(ctx, record.ID); err != nil {
			return err
		}
		for i := range items {
			items[i].CartID = record.ID
			if err := txRepo.CreateItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		record.Items = items
		record.CouponCode = codeOf(coupon)
		s.applyTotals(ctx, record, coupon)
		if input.Total != record.Total {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart total mismatch").
				WithDetails(map[string]any{"total": record.Total})
		}
		return txRepo.Save(ctx, record)
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	return s.Get(ctx, customerID)
}

func (s *service) AddItem(ctx context.Context, customerID uuid.UUID, input AddItemInput) (*models.CartRecord, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item, err := s.buildItem(ctx, input.ProductID, input.Selection, input.Quantity)
	if err != nil {
		return nil, err
	}

	// identical product+selection lines merge instead of duplicating
	var existing *models.CartItem
	for i := range record.Items {
		line := &record.Items[i]
		if line.ProductID == item.ProductID && line.Selection.Equal(item.Selection) {
			existing = line
			break
		}
	}

	if err := s.mutate(ctx, record, func(txRepo Repository) error {
		if existing != nil {
			existing.Quantity += input.Quantity
			existing.UnitPrice = item.UnitPrice
			existing.LineSubtotal = item.UnitPrice * int64(existing.Quantity)
			return txRepo.SaveItem(ctx, existing)
		}
		item.CartID = record.ID
		if err := txRepo.CreateItem(ctx, item); err != nil {
			return err
		}
		record.Items = append(record.Items, *item)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

// UpdateItemQuantity sets a line's quantity. Zero removes the line rather
// than leaving an empty row.
func (s *service) UpdateItemQuantity(ctx context.Context, customerID, itemID uuid.UUID, quantity int) (*models.CartRecord, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, customerID, itemID)
	}

	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	line := findItem(record, itemID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if err := s.mutate(ctx, record, func(txRepo Repository) error {
		line.Quantity = quantity
		line.LineSubtotal = line.UnitPrice * int64(quantity)
		return txRepo.SaveItem(ctx, line)
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveItem(ctx context.Context, customerID, itemID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if findItem(record, itemID) == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if err := s.mutate(ctx, record, func(txRepo Repository) error {
		if err := txRepo.DeleteItem(ctx, record.ID, itemID); err != nil {
			return err
		}
		kept := record.Items[:0]
		for _, line := range record.Items {
			if line.ID != itemID {
				kept = append(kept, line)
			}
		}
		record.Items = kept
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *service) ApplyCoupon(ctx context.Context, customerID uuid.UUID, code string) (*models.CartRecord, error) {
	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	coupon, err := s.coupons.Resolve(ctx, code, s.now())
	if err != nil {
		return nil, err
	}
	if coupons.CalculateDiscount(coupon, record.Items, lineSum(record.Items), s.now()) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to this cart")
	}

	if err := s.mutate(ctx, record, func(Repository) error {
		record.CouponCode = codeOf(coupon)
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

func (s *service) RemoveCoupon(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := s.mutate(ctx, record, func(Repository) error {
		record.CouponCode = nil
		return nil
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, customerID)
}

// PreviewCoupon reports a code's effect on an arbitrary cart payload without
// touching stored state. Used by the storefront before login.
func (s *service) PreviewCoupon(ctx context.Context, code string, lines []PreviewLine) (*CouponPreview, error) {
	coupon, err := s.coupons.Resolve(ctx, code, s.now())
	if err != nil {
		return nil, err
	}

	items := make([]models.CartItem, 0, len(lines))
	var subtotal int64
	for _, line := range lines {
		if line.Quantity < 1 || line.UnitPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid preview line")
		}
		items = append(items, models.CartItem{ProductID: line.ProductID})
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	discount := coupons.CalculateDiscount(coupon, items, subtotal, s.now())
	if discount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon does not apply to this cart")
	}
	return &CouponPreview{
		Code:     coupon.Code,
		Discount: discount,
		Subtotal: subtotal,
		Total:    subtotal - discount,
	}, nil
}

// buildItem snapshots one purchasable line, pricing the selection against the
// stored variant definition and rejecting blocked combinations.
func (s *service) buildItem(ctx context.Context, productID uuid.UUID, selection types.Selection, quantity int) (*models.CartItem, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	availability := variants.CheckAvailability(selection, product.Rules)
	if !availability.Available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, availability.Reason)
	}

	unitPrice := variants.CalculatePrice(product.BasePrice, selection, product.Options, product.Rules)
	return &models.CartItem{
		ProductID:    product.ID,
		ProductName:  product.Name,
		Selection:    selection.Clone(),
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		LineSubtotal: unitPrice * int64(quantity),
	}, nil
}

// mutate runs one cart mutation plus the totals recompute in a transaction.
func (s *service) mutate(ctx context.Context, record *models.CartRecord, fn func(txRepo Repository) error) error {
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := fn(txRepo); err != nil {
			return err
		}
		coupon, err := s.resolveOptional(ctx, record.CouponCode)
		if err != nil {
			// a coupon that expired or was deleted since it was applied
			// drops off silently
			if typed := pkgerrors.As(err); typed != nil && couponLapsed(typed.Code()) {
				record.CouponCode = nil
				coupon = nil
			} else {
				return err
			}
		}
		s.applyTotals(ctx, record, coupon)
		return txRepo.Save(ctx, record)
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	return nil
}

func couponLapsed(code pkgerrors.Code) bool {
	return code == pkgerrors.CodeValidation || code == pkgerrors.CodeNotFound
}

func (s *service) resolveOptional(ctx context.Context, code *string) (*models.Coupon, error) {
	if code == nil || *code == "" {
		return nil, nil
	}
	return s.coupons.Resolve(ctx, *code, s.now())
}

func (s *service) applyTotals(ctx context.Context, record *models.CartRecord, coupon *models.Coupon) {
	subtotal := lineSum(record.Items)
	discount := coupons.CalculateDiscount(coupon, record.Items, subtotal, s.now())
	if discount == 0 && coupon != nil {
		// eligible line left the cart: coupon no longer applies
		record.CouponCode = nil
	}

	var shipping int64
	if len(record.Items) > 0 {
		if stored, err := s.settings.Get(ctx); err == nil {
			shipping = settings.ShippingFeeFor(stored, subtotal)
		}
	}

	record.Subtotal = subtotal
	record.Discount = discount
	record.ShippingFee = shipping
	record.Total = subtotal - discount + shipping
}

func findItem(record *models.CartRecord, itemID uuid.UUID) *models.CartItem {
	for i := range record.Items {
		if record.Items[i].ID == itemID {
			return &record.Items[i]
		}
	}
	return nil
}

func lineSum(items []models.CartItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.LineSubtotal
	}
	return sum
}

func codeOf(coupon *models.Coupon) *string {
	if coupon == nil {
		return nil
	}
	code := coupon.Code
	return &code
}
