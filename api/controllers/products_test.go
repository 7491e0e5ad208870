package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

func testCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(context.Background(), kvstore.NewMemory())
	require.NoError(t, err)
	return svc
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminCreateProduct(t *testing.T) {
	svc := testCatalog(t)

	t.Run("success", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"Kupa","category":"mutfak","price":4500,"production_days":3}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		rec := httptest.NewRecorder()
		AdminCreateProduct(svc, testLogger()).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var envelope struct {
			Data catalog.Product `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, "Kupa", envelope.Data.Name)
		assert.NotZero(t, envelope.Data.ID)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		body := bytes.NewBufferString(`{"category":"mutfak"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		rec := httptest.NewRecorder()
		AdminCreateProduct(svc, testLogger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"Kupa","price":1,"production_days":1,"surprise":true}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
		rec := httptest.NewRecorder()
		AdminCreateProduct(svc, testLogger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetProduct(t *testing.T) {
	svc := testCatalog(t)
	created, err := svc.Create(context.Background(), catalog.ProductInput{
		Name: "Atkı", Category: "tekstil", Price: 8000, ProductionDays: 7,
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		id := strconv.FormatInt(created.ID, 10)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil)
		req = withURLParam(req, "productId", id)
		rec := httptest.NewRecorder()
		GetProduct(svc, testLogger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/42", nil)
		req = withURLParam(req, "productId", "42")
		rec := httptest.NewRecorder()
		GetProduct(svc, testLogger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/abc", nil)
		req = withURLParam(req, "productId", "abc")
		rec := httptest.NewRecorder()
		GetProduct(svc, testLogger()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
