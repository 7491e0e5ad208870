package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/api/validators"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/internal/pricing"
	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/logger"
)

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type appliedCouponView struct {
	Coupon   *coupons.Coupon `json:"coupon"`
	Discount int64           `json:"discount"`
}

// ApplyCoupon validates the code against the current pre-campaign subtotal
// and installs it in the session slot. Rejections come back as validation
// errors with the specific reason.
func ApplyCoupon(carts *cart.Service, pricer *pricing.Calculator, couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithCouponCode(r.Context(), payload.Code)
		subtotal := pricer.Price(ctx, carts.Snapshot(ctx)).Subtotal

		coupon, discount, err := couponSvc.Apply(ctx, payload.Code, subtotal)
		if err != nil {
			var rejection *coupons.RejectionError
			if errors.As(err, &rejection) {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Newf(pkgerrors.CodeValidation, "coupon rejected: %s", rejection.Reason).
						WithDetails(map[string]string{"reason": string(rejection.Reason)}))
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, appliedCouponView{Coupon: coupon, Discount: discount})
	}
}

func RemoveCoupon(couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponSvc.RemoveApplied(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

func AdminListCoupons(couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, couponSvc.List(r.Context()))
	}
}

type couponRequest struct {
	Code       string     `json:"code" validate:"required"`
	Type       string     `json:"type" validate:"required,oneof=percentage fixed"`
	Amount     int64      `json:"amount" validate:"required,min=1"`
	MinAmount  int64      `json:"minAmount" validate:"min=0"`
	UsageLimit *int64     `json:"usageLimit" validate:"omitempty,min=1"`
	StartDate  *time.Time `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	Active     bool       `json:"active"`
}

func (c couponRequest) toInput() coupons.CouponInput {
	return coupons.CouponInput{
		Code:       c.Code,
		Type:       enums.CouponType(c.Type),
		Amount:     c.Amount,
		MinAmount:  c.MinAmount,
		UsageLimit: c.UsageLimit,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		Active:     c.Active,
	}
}

func AdminCreateCoupon(couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		coupon, err := couponSvc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func AdminToggleCoupon(couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		coupon, err := couponSvc.Toggle(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, coupon)
	}
}

func AdminDeleteCoupon(couponSvc *coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if err := couponSvc.Delete(r.Context(), code); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
