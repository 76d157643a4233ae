package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saigonmart/backend/internal/cart"
	"github.com/saigonmart/backend/pkg/db/models"
	"github.com/saigonmart/backend/pkg/enums"
	pkgerrors "github.com/saigonmart/backend/pkg/errors"
	"github.com/saigonmart/backend/pkg/pagination"
	"github.com/saigonmart/backend/pkg/types"
)

type memOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (m *memOrderRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) Save(ctx context.Context, order *models.Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := m.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) FindByIDAndCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.Order, error) {
	if order, ok := m.orders[id]; ok && order.CustomerID == customerID {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, order := range m.orders {
		if order.Status == enums.OrderStatusPending && order.PlacedAt.Before(cutoff) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (m *memOrderRepo) List(ctx context.Context, params ListQuery) ([]models.Order, *pagination.Cursor, error) {
	var out []models.Order
	for _, order := range m.orders {
		out = append(out, *order)
	}
	return out, nil, nil
}

type memCartRepo struct {
	record *models.CartRecord
}

func (m *memCartRepo) WithTx(tx *gorm.DB) cart.Repository { return m }

func (m *memCartRepo) Create(ctx context.Context, record *models.CartRecord) error {
	m.record = record
	return nil
}

func (m *memCartRepo) Save(ctx context.Context, record *models.CartRecord) error {
	m.record = record
	return nil
}

func (m *memCartRepo) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartRecord, error) {
	if m.record == nil || m.record.CustomerID != customerID || m.record.Status != enums.CartStatusActive {
		return nil, gorm.ErrRecordNotFound
	}
	return m.record, nil
}

func (m *memCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error  { return nil }
func (m *memCartRepo) SaveItem(ctx context.Context, item *models.CartItem) error    { return nil }
func (m *memCartRepo) DeleteItem(ctx context.Context, cartID, itemID uuid.UUID) error { return nil }
func (m *memCartRepo) DeleteItems(ctx context.Context, cartID uuid.UUID) error       { return nil }

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type stubProducts struct {
	byID map[uuid.UUID]*models.Product
}

func (s *stubProducts) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubCoupons struct {
	byCode map[string]*models.Coupon
}

func (s *stubCoupons) Resolve(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	if c, ok := s.byCode[code]; ok {
		return c, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
}

type stubSettings struct {
	settings models.StoreSettings
}

func (s *stubSettings) Get(ctx context.Context) (*models.StoreSettings, error) {
	copy := s.settings
	return &copy, nil
}

func strPtr(s string) *string { return &s }

type fixtureEnv struct {
	svc      Service
	orders   *memOrderRepo
	carts    *memCartRepo
	product  *models.Product
	customer uuid.UUID
}

func newFixture(t *testing.T) *fixtureEnv {
	t.Helper()

	medium := uuid.New()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Cà phê sữa",
		BasePrice: 100000,
		IsActive:  true,
		Options: []models.VariantOption{
			{
				Name: "Size",
				Values: []models.VariantValue{
					{ID: medium, Label: "M", PriceDelta: 20000},
				},
			},
		},
	}

	customerID := uuid.New()
	selection := types.Selection{"Size": medium.String()}
	carts := &memCartRepo{record: &models.CartRecord{
		ID:         uuid.New(),
		CustomerID: customerID,
		Status:     enums.CartStatusActive,
		Items: []models.CartItem{
			{
				ID:           uuid.New(),
				ProductID:    product.ID,
				ProductName:  product.Name,
				Selection:    selection,
				Quantity:     2,
				UnitPrice:    120000,
				LineSubtotal: 240000,
			},
		},
	}}

	ordersRepo := newMemOrderRepo()
	svc, err := NewService(
		ordersRepo,
		carts,
		stubTx{},
		&stubProducts{byID: map[uuid.UUID]*models.Product{product.ID: product}},
		&stubCoupons{byCode: map[string]*models.Coupon{
			"GIAM15": {
				Code:      "GIAM15",
				Kind:      enums.CouponKindPercentage,
				Value:     15,
				ExpiresAt: time.Now().Add(time.Hour),
				IsActive:  true,
			},
		}},
		&stubSettings{settings: models.StoreSettings{ShippingFee: 25000, FreeShippingThreshold: 500000}},
	)
	require.NoError(t, err)

	return &fixtureEnv{svc: svc, orders: ordersRepo, carts: carts, product: product, customer: customerID}
}

func checkoutInput() CheckoutInput {
	return CheckoutInput{
		ContactName:     "Minh",
		ContactPhone:    "+84912345678",
		ShippingAddress: "12 Lê Lợi, Q1, TP.HCM",
	}
}

func TestCheckoutSnapshotsCart(t *testing.T) {
	env := newFixture(t)

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.Number, "SGM-"), "number %q", order.Number)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, int64(120000), order.LineItems[0].UnitPrice)
	assert.Equal(t, int64(240000), order.Subtotal)
	assert.Equal(t, int64(25000), order.ShippingFee)
	assert.Equal(t, int64(265000), order.Total)

	// cart is consumed
	assert.Equal(t, enums.CartStatusConverted, env.carts.record.Status)
}

func TestCheckoutAppliesCoupon(t *testing.T) {
	env := newFixture(t)
	code := "GIAM15"
	env.carts.record.CouponCode = &code

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, int64(36000), order.Discount)
	assert.Equal(t, int64(240000-36000+25000), order.Total)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "GIAM15", *order.CouponCode)
}

func TestCheckoutRepricesStaleLines(t *testing.T) {
	env := newFixture(t)
	// price went up since the line was added
	env.product.Options[0].Values[0].PriceDelta = 50000

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)
	assert.Equal(t, int64(150000), order.LineItems[0].UnitPrice)
	assert.Equal(t, int64(300000), order.Subtotal)
}

func TestCheckoutRejectsBlockedCombination(t *testing.T) {
	env := newFixture(t)
	env.product.Rules = []models.CombinationRule{
		{
			Combination: env.carts.record.Items[0].Selection,
			Available:   false,
			Reason:      strPtr("Hết hàng"),
		},
	}

	_, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Contains(t, typed.Message(), "Hết hàng")
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newFixture(t)
	env.carts.record.Items = nil

	_, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCheckoutValidatesContact(t *testing.T) {
	env := newFixture(t)

	input := checkoutInput()
	input.ShippingAddress = "  "
	_, err := env.svc.Checkout(context.Background(), env.customer, input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCancelPendingOnly(t *testing.T) {
	env := newFixture(t)

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(context.Background(), env.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	// cancelled is terminal
	_, err = env.svc.Cancel(context.Background(), env.customer, order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestCancelOtherCustomersOrder(t *testing.T) {
	env := newFixture(t)

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateStatusTransitions(t *testing.T) {
	env := newFixture(t)

	order, err := env.svc.Checkout(context.Background(), env.customer, checkoutInput())
	require.NoError(t, err)

	updated, err := env.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, updated.Status)

	// skipping shipping is not allowed
	_, err = env.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	_, err = env.svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatus("bogus"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
