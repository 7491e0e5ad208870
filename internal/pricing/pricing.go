package pricing

import (
	"context"

	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/internal/cart"
	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/internal/coupons"
	"github.com/ilmekten/shop-backend/pkg/enums"
)

// Breakdown is the full pricing of a cart at one instant. Amounts are minor
// currency units. Cart lines whose product has been deleted contribute
// nothing anywhere, including the unit count.
type Breakdown struct {
	Subtotal          int64               `json:"subtotal"`
	TotalUnits        int64               `json:"totalUnits"`
	MaxProductionDays int                 `json:"maxProductionDays"`
	Campaigns         []campaigns.Applied `json:"campaigns"`
	CampaignDiscount  int64               `json:"campaignDiscount"`
	CouponDiscount    int64               `json:"couponDiscount"`
	TotalDiscount     int64               `json:"totalDiscount"`
	FinalTotal        int64               `json:"finalTotal"`
}

// ProductFinder resolves cart lines against the live catalog.
type ProductFinder interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// CampaignSource hands the calculator the campaigns to evaluate.
type CampaignSource interface {
	Active(ctx context.Context) []campaigns.Campaign
}

// CouponSource exposes the shopper's applied coupon, if any.
type CouponSource interface {
	Applied(ctx context.Context) *coupons.Coupon
}

// Calculator derives a Breakdown from cart lines. It reads the catalog,
// campaign and coupon state live on every call; nothing is cached, so edits
// to any of them show up in the next pricing pass.
type Calculator struct {
	products  ProductFinder
	campaigns CampaignSource
	engine    *campaigns.Engine
	coupons   CouponSource
}

func NewCalculator(products ProductFinder, campaignSource CampaignSource, engine *campaigns.Engine, couponSource CouponSource) *Calculator {
	return &Calculator{
		products:  products,
		campaigns: campaignSource,
		engine:    engine,
		coupons:   couponSource,
	}
}

// Price walks the cart and produces the breakdown. The coupon discount is
// recomputed here from the applied coupon's definition against the current
// pre-campaign subtotal; the figure shown at apply time is never trusted.
func (c *Calculator) Price(ctx context.Context, lines []cart.Line) Breakdown {
	var breakdown Breakdown
	breakdown.Campaigns = []campaigns.Applied{}

	for _, line := range lines {
		product, err := c.products.FindByID(ctx, line.ProductID)
		if err != nil {
			continue
		}
		breakdown.Subtotal += product.UnitPrice() * line.Quantity
		breakdown.TotalUnits += line.Quantity
		if product.ProductionDays > breakdown.MaxProductionDays {
			breakdown.MaxProductionDays = product.ProductionDays
		}
	}

	if c.campaigns != nil && c.engine != nil {
		breakdown.Campaigns = c.engine.Evaluate(ctx, c.campaigns.Active(ctx), breakdown.TotalUnits, breakdown.Subtotal)
		for _, applied := range breakdown.Campaigns {
			if applied.Kind == enums.CampaignKindDiscount {
				breakdown.CampaignDiscount += applied.Amount
			}
		}
	}

	if c.coupons != nil {
		if applied := c.coupons.Applied(ctx); applied != nil {
			breakdown.CouponDiscount = coupons.ComputeDiscount(*applied, breakdown.Subtotal)
		}
	}

	breakdown.TotalDiscount = breakdown.CampaignDiscount + breakdown.CouponDiscount
	breakdown.FinalTotal = breakdown.Subtotal - breakdown.TotalDiscount
	if breakdown.FinalTotal < 0 {
		breakdown.FinalTotal = 0
	}
	return breakdown
}
