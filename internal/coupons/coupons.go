package coupons

import (
	"fmt"
	"time"

	"github.com/ilmekten/shop-backend/pkg/enums"
	"github.com/ilmekten/shop-backend/pkg/money"
)

// Coupon is a single-use-per-checkout code. Codes are stored and matched
// uppercase. A nil UsageLimit means unlimited; nil dates leave that bound
// open.
type Coupon struct {
	Code       string           `json:"code"`
	Type       enums.CouponType `json:"type"`
	Amount     int64            `json:"amount"`
	MinAmount  int64            `json:"minAmount"`
	UsageLimit *int64           `json:"usageLimit"`
	UsageCount int64            `json:"usageCount"`
	StartDate  *time.Time       `json:"startDate"`
	EndDate    *time.Time       `json:"endDate"`
	Active     bool             `json:"active"`
}

// Reason identifies why a coupon was rejected. The check order is fixed, so
// a coupon failing several checks always reports the same reason.
type Reason string

const (
	ReasonNotFound          Reason = "NOT_FOUND"
	ReasonInactive          Reason = "INACTIVE"
	ReasonUsageLimitReached Reason = "USAGE_LIMIT_REACHED"
	ReasonNotYetValid       Reason = "NOT_YET_VALID"
	ReasonExpired           Reason = "EXPIRED"
	ReasonBelowMinimum      Reason = "BELOW_MINIMUM"
)

// RejectionError reports a failed coupon validation with its reason.
type RejectionError struct {
	Code   string
	Reason Reason
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

// ComputeDiscount returns the discount a coupon yields against a
// pre-campaign subtotal, capped so the discount never exceeds the subtotal.
func ComputeDiscount(c Coupon, subtotal int64) int64 {
	var discount int64
	switch c.Type {
	case enums.CouponTypePercentage:
		discount = money.RoundPercent(subtotal, c.Amount)
	case enums.CouponTypeFixed:
		discount = c.Amount
	}
	return money.Cap(discount, subtotal)
}
