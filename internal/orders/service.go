package orders

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/internal/cart"
	"github.com/saigonmart/backend/internal/coupons"
	"github.com/saigonmart/backend/internal/settings"
	"github.com/saigonmart/backend/internal/variants"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
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

// Service exposes checkout and order lifecycle operations.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*models.Order, error)
	GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params ListQuery) ([]models.Order, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo     Repository
	carts    cart.Repository
	tx       txRunner
	products productSource
	coupons  couponSource
	settings settingsSource
	now      func() time.Time
}

// NewService builds an order service backed by the provided stack.
func NewService(repo Repository, carts cart.Repository, tx txRunner, products productSource, couponSrc couponSource, settingsSrc settingsSource) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart source required")
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
		carts:    carts,
		tx:       tx,
		products: products,
		coupons:  couponSrc,
		settings: settingsSrc,
		now:      time.Now,
	}, nil
}

// CheckoutInput is the contact and delivery payload for placing an order.
type CheckoutInput struct {
	ContactName     string
	ContactPhone    string
	ShippingAddress string
	Note            *string
}

// Checkout converts the active cart into an order. Every line is re-priced
// and re-checked against the current variant definition so a stale cart
// cannot buy a blocked combination or lock in an outdated price.
func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}

	record, err := s.carts.FindActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	now := s.now().UTC()

	lines := make([]models.OrderLineItem, 0, len(record.Items))
	var subtotal int64
	for _, item := range record.Items {
		product, err := s.products.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s is no longer available", product.Name))
		}
		availability := variants.CheckAvailability(item.Selection, product.Rules)
		if !availability.Available {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("%s: %s", product.Name, availability.Reason))
		}

		unitPrice := variants.CalculatePrice(product.BasePrice, item.Selection, product.Options, product.Rules)
		lineSubtotal := unitPrice * int64(item.Quantity)
		subtotal += lineSubtotal
		lines = append(lines, models.OrderLineItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Selection:    item.Selection.Clone(),
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			LineSubtotal: lineSubtotal,
		})
	}

	var coupon *models.Coupon
	if record.CouponCode != nil && *record.CouponCode != "" {
		coupon, err = s.coupons.Resolve(ctx, *record.CouponCode, now)
		if err != nil {
			// the code was valid when applied; if it lapsed since, checkout
			// proceeds without it rather than failing the purchase
			if typed := pkgerrors.As(err); typed == nil || typed.Code() == pkgerrors.CodeDependency {
				return nil, err
			}
			coupon = nil
		}
	}
	discount := coupons.CalculateDiscount(coupon, record.Items, subtotal, now)

	stored, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	shipping := settings.ShippingFeeFor(stored, subtotal)

	order := &models.Order{
		Number:          newOrderNumber(now),
		CustomerID:      customerID,
		Status:          enums.OrderStatusPending,
		ContactName:     strings.TrimSpace(input.ContactName),
		ContactPhone:    strings.TrimSpace(input.ContactPhone),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Note:            input.Note,
		Subtotal:        subtotal,
		Discount:        discount,
		ShippingFee:     shipping,
		Total:           subtotal - discount + shipping,
		LineItems:       lines,
		PlacedAt:        now,
	}
	if coupon != nil && discount > 0 {
		code := coupon.Code
		order.CouponCode = &code
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		record.Status = enums.CartStatusConverted
		return s.carts.WithTx(tx).Save(ctx, record)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	return order, nil
}

func (s *service) GetForCustomer(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByIDAndCustomer(ctx, orderID, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Cancel lets the customer back out of an order that has not been confirmed.
func (s *service) Cancel(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetForCustomer(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled").
			WithDetails(map[string]any{"status": order.Status})
	}

	order.Status = enums.OrderStatusCancelled
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	return order, nil
}

func (s *service) GetByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params ListQuery) ([]models.Order, *pagination.Cursor, error) {
	orders, cursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, cursor, nil
}

// UpdateStatus moves an order along the back-office lifecycle.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	order, err := s.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	order.Status = next
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	return order, nil
}

func validateCheckoutInput(input CheckoutInput) error {
	if strings.TrimSpace(input.ContactName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name is required")
	}
	if strings.TrimSpace(input.ContactPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact phone is required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	return nil
}

// newOrderNumber derives a short human-readable number. Uniqueness is
// enforced by the column constraint; the uuid suffix makes collisions
// vanishingly unlikely.
func newOrderNumber(placedAt time.Time) string {
	id := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(id[:4]))
	return fmt.Sprintf("SGM-%s-%s", placedAt.Format("20060102"), suffix)
}
