package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/api/validators"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

type cartView struct {
	Items         []cart.Line       `json:"items"`
	AppliedCoupon *coupons.Coupon   `json:"appliedCoupon"`
	Pricing       pricing.Breakdown `json:"pricing"`
}

// GetCart returns the cart lines together with the live pricing breakdown;
// the storefront renders its totals exclusively from this payload.
func GetCart(carts *cart.Service, pricer *pricing.Calculator, couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines := carts.Snapshot(r.Context())
		responses.WriteSuccess(w, cartView{
			Items:         lines,
			AppliedCoupon: couponSvc.Applied(r.Context()),
			Pricing:       pricer.Price(r.Context(), lines),
		})
	}
}

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,min=1"`
	Quantity  int64 `json:"quantity" validate:"min=0"`
}

func AddCartItem(carts *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := carts.Add(r.Context(), payload.ProductID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carts.Snapshot(r.Context()))
	}
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity" validate:"min=0"`
}

func SetCartItemQuantity(carts *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := carts.SetQuantity(r.Context(), id, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carts.Snapshot(r.Context()))
	}
}

func RemoveCartItem(carts *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := carts.Remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, carts.Snapshot(r.Context()))
	}
}

func ClearCart(carts *cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := carts.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
