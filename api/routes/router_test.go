package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/catalog"
	checkoutsvc "github.com/ilmekten/shop-backend/internal/checkout"
	"github.com/ilmekten/shop-backend/internal/corporate"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/favorites"
	"github.com/ilmekten/shop-backend/internal/orders"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/config"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	store := kvstore.NewMemory()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled})

	catalogSvc, err := catalog.NewService(ctx, store)
	require.NoError(t, err)
	cartSvc, err := cart.NewService(ctx, store, catalogSvc)
	require.NoError(t, err)
	registry, err := campaigns.NewRegistry(ctx, store)
	require.NoError(t, err)
	couponSvc, err := coupons.NewService(ctx, store, nil)
	require.NoError(t, err)
	ledger, err := orders.NewLedger(ctx, store)
	require.NoError(t, err)
	favoriteSvc, err := favorites.NewService(ctx, store)
	require.NoError(t, err)
	corporateSvc, err := corporate.NewService(ctx, store)
	require.NoError(t, err)

	pricer := pricing.NewCalculator(catalogSvc, registry, campaigns.NewEngine(catalogSvc), couponSvc)
	checkoutService, err := checkoutsvc.NewService(checkoutsvc.Deps{
		Carts:    cartSvc,
		Products: catalogSvc,
		Pricer:   pricer,
		Coupons:  couponSvc,
		Ledger:   ledger,
		Logger:   logg,
	})
	require.NoError(t, err)

	return NewRouter(Deps{
		Config:    &config.Config{App: config.AppConfig{Env: "dev"}},
		Logger:    logg,
		Catalog:   catalogSvc,
		Cart:      cartSvc,
		Campaigns: registry,
		Coupons:   couponSvc,
		Pricer:    pricer,
		Ledger:    ledger,
		Checkout:  checkoutService,
		Favorites: favoriteSvc,
		Corporate: corporateSvc,
	})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func dataOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func TestHealthLive(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Ilmekten-Env"))
}

func TestStorefrontFlow(t *testing.T) {
	h := newTestRouter(t)

	// Admin seeds a product and a discount campaign.
	rec := do(t, h, http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "Seramik Kupa", "category": "mutfak", "price": 10000, "production_days": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	productID := int64(dataOf(t, rec)["id"].(float64))

	rec = do(t, h, http.MethodPost, "/api/v1/admin/campaigns", map[string]any{
		"type": "discount", "name": "sezon", "active": true, "minAmount": 15000, "discountPercent": 10,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/admin/coupons", map[string]any{
		"code": "merhaba", "type": "percentage", "amount": 5, "active": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Shopper fills the cart.
	rec = do(t, h, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"productId": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Coupon applies against the pre-campaign subtotal of 20000.
	rec = do(t, h, http.MethodPost, "/api/v1/cart/coupon", map[string]any{"code": "MERHABA"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1000), dataOf(t, rec)["discount"])

	// Cart view carries the full breakdown.
	rec = do(t, h, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	breakdown := dataOf(t, rec)["pricing"].(map[string]any)
	assert.Equal(t, float64(20000), breakdown["subtotal"])
	assert.Equal(t, float64(2000), breakdown["campaignDiscount"])
	assert.Equal(t, float64(1000), breakdown["couponDiscount"])
	assert.Equal(t, float64(17000), breakdown["finalTotal"])

	// Checkout commits the order and empties the cart.
	rec = do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{
		"customer": map[string]any{
			"name": "Ayşe Yılmaz", "phone": "5551234567",
			"address": "Çiçek Sk. 3", "city": "İstanbul",
		},
		"paymentMethod": "cash",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := dataOf(t, rec)
	assert.Equal(t, float64(17000), order["total"])
	assert.Equal(t, "pending", order["status"])

	rec = do(t, h, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, dataOf(t, rec)["items"])

	// Admin sees the order and can move it along.
	rec = do(t, h, http.MethodGet, "/api/v1/admin/orders/?search=kupa", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	orderID := int64(order["id"].(float64))
	rec = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/admin/orders/%d/status", orderID), map[string]any{
		"status": "processing",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "processing", dataOf(t, rec)["status"])
}

func TestUnknownProductReturns404(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/v1/products/123", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFavoritesToggle(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/v1/favorites/5/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, dataOf(t, rec)["favorited"])

	rec = do(t, h, http.MethodPost, "/api/v1/favorites/5/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, dataOf(t, rec)["favorited"])
}

func TestCheckoutValidationError(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{
		"customer":      map[string]any{"name": "A"},
		"paymentMethod": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
