package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/rs/zerolog"

	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/orders"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

type cartStub struct {
	lines   []cart.Line
	cleared bool
}

func (c *cartStub) Snapshot(_ context.Context) []cart.Line {
	out := make([]cart.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *cartStub) Clear(_ context.Context) error {
	c.cleared = true
	c.lines = nil
	return nil
}

type catalogStub struct {
	products map[int64]catalog.Product
}

func (s *catalogStub) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	if p, ok := s.products[id]; ok {
		return &p, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
}

type campaignStub struct {
	active []campaigns.Campaign
}

func (s *campaignStub) Active(_ context.Context) []campaigns.Campaign { return s.active }

type couponStub struct {
	mu        sync.Mutex
	applied   *coupons.Coupon
	committed []string
}

func (s *couponStub) Applied(_ context.Context) *coupons.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applied == nil {
		return nil
	}
	c := *s.applied
	return &c
}

func (s *couponStub) CommitUsage(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, code)
	return nil
}

func (s *couponStub) RemoveApplied(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = nil
}

type notifierStub struct {
	mu     sync.Mutex
	orders []orders.Order
}

func (n *notifierStub) NotifyAsync(_ context.Context, order orders.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

type fixture struct {
	svc      *Service
	carts    *cartStub
	coupons  *couponStub
	notifier *notifierStub
	ledger   *orders.Ledger
}

func newFixture(t *testing.T, products map[int64]catalog.Product, active []campaigns.Campaign, applied *coupons.Coupon, lines []cart.Line) *fixture {
	t.Helper()

	cat := &catalogStub{products: products}
	couponSrc := &couponStub{applied: applied}
	pricer := pricing.NewCalculator(cat, &campaignStub{active: active}, campaigns.NewEngine(cat), couponSrc)
	ledger, err := orders.NewLedger(context.Background(), kvstore.NewMemory())
	require.NoError(t, err)

	carts := &cartStub{lines: lines}
	notifier := &notifierStub{}

	svc, err := NewService(Deps{
		Carts:    carts,
		Products: cat,
		Pricer:   pricer,
		Coupons:  couponSrc,
		Ledger:   ledger,
		Notifier: notifier,
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled}),
	})
	require.NoError(t, err)

	return &fixture{svc: svc, carts: carts, coupons: couponSrc, notifier: notifier, ledger: ledger}
}

func validInput() Input {
	return Input{
		Customer: CustomerInput{
			Name: "Ayşe Yılmaz", Phone: "5551234567", Address: "Çiçek Sk. 3", City: "İstanbul",
		},
		PaymentMethod: enums.PaymentMethodCash,
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newFixture(t,
		map[int64]catalog.Product{
			1: {ID: 1, Name: "Seramik Kupa", Price: 500, ProductionDays: 3},
			7: {ID: 7, Name: "Mini Sabun", Price: 100, ProductionDays: 1},
		},
		[]campaigns.Campaign{
			{ID: 1, Kind: enums.CampaignKindGift, MinQuantity: 2, GiftProductID: 7},
			{ID: 2, Kind: enums.CampaignKindDiscount, MinAmount: 1000, DiscountPercent: 10},
		},
		&coupons.Coupon{Code: "TEN", Type: enums.CouponTypePercentage, Amount: 10},
		[]cart.Line{{ProductID: 1, Quantity: 2}},
	)

	order, err := f.svc.Checkout(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1000), order.Subtotal)
	assert.Equal(t, int64(100), order.CampaignDiscount)
	require.NotNil(t, order.Coupon)
	assert.Equal(t, "TEN", order.Coupon.Code)
	assert.Equal(t, int64(100), order.Coupon.Amount)
	assert.Equal(t, int64(200), order.Discount)
	assert.Equal(t, int64(800), order.Total)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	require.Len(t, order.Gifts, 1)
	assert.Equal(t, "Mini Sabun", order.Gifts[0].Name)

	// Session cleanup.
	assert.True(t, f.carts.cleared)
	assert.Equal(t, []string{"TEN"}, f.coupons.committed)
	assert.Nil(t, f.coupons.Applied(context.Background()))
	require.Len(t, f.notifier.orders, 1)
	assert.Equal(t, order.ID, f.notifier.orders[0].ID)

	// The order is in the ledger.
	stored, err := f.ledger.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, map[int64]catalog.Product{}, nil, nil, nil)
	_, err := f.svc.Checkout(context.Background(), validInput())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutOnlyDeletedProducts(t *testing.T) {
	f := newFixture(t, map[int64]catalog.Product{}, nil, nil,
		[]cart.Line{{ProductID: 99, Quantity: 1}})
	_, err := f.svc.Checkout(context.Background(), validInput())
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.False(t, f.carts.cleared)
}

func TestCheckoutCustomerValidation(t *testing.T) {
	f := newFixture(t, map[int64]catalog.Product{
		1: {ID: 1, Price: 100, ProductionDays: 1},
	}, nil, nil, []cart.Line{{ProductID: 1, Quantity: 1}})

	input := validInput()
	input.Customer.City = "  "
	_, err := f.svc.Checkout(context.Background(), input)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutCardValidation(t *testing.T) {
	newCardFixture := func() *fixture {
		return newFixture(t, map[int64]catalog.Product{
			1: {ID: 1, Name: "Kupa", Price: 100, ProductionDays: 1},
		}, nil, nil, []cart.Line{{ProductID: 1, Quantity: 1}})
	}

	cardInput := func(number string) Input {
		in := validInput()
		in.PaymentMethod = enums.PaymentMethodCard
		in.Card = &CardInput{Number: number, Expiry: "12/27", CVV: "123", Name: "AYSE YILMAZ"}
		return in
	}

	t.Run("test cards accepted", func(t *testing.T) {
		for _, number := range []string{"1111111111111111", "111", "1111 1111 1111 1111"} {
			f := newCardFixture()
			_, err := f.svc.Checkout(context.Background(), cardInput(number))
			require.NoError(t, err, number)
		}
	})

	t.Run("short number rejected", func(t *testing.T) {
		f := newCardFixture()
		_, err := f.svc.Checkout(context.Background(), cardInput("123456789012"))
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	})

	t.Run("thirteen digits accepted", func(t *testing.T) {
		f := newCardFixture()
		_, err := f.svc.Checkout(context.Background(), cardInput("1234567890123"))
		require.NoError(t, err)
	})

	t.Run("missing card details rejected", func(t *testing.T) {
		f := newCardFixture()
		in := validInput()
		in.PaymentMethod = enums.PaymentMethodCard
		_, err := f.svc.Checkout(context.Background(), in)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	})
}

func TestCheckoutWithoutCouponOmitsCouponInfo(t *testing.T) {
	f := newFixture(t, map[int64]catalog.Product{
		1: {ID: 1, Name: "Kupa", Price: 100, ProductionDays: 1},
	}, nil, nil, []cart.Line{{ProductID: 1, Quantity: 1}})

	order, err := f.svc.Checkout(context.Background(), validInput())
	require.NoError(t, err)
	assert.Nil(t, order.Coupon)
	assert.Empty(t, f.coupons.committed)
}
