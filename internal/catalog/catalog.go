package catalog

import (
	"github.com/ilmekten/shop-backend/pkg/money"
)

// Product is the catalog's unit of sale. Price and discount are owned by the
// catalog; orders snapshot them at checkout time.
type Product struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Category       string `json:"category"`
	Price          int64  `json:"price"`
	Discount       int64  `json:"discount"`
	ProductionDays int    `json:"production_days"`
}

// UnitPrice returns the effective per-unit price after the product's own
// discount.
func (p Product) UnitPrice() int64 {
	return money.DiscountedUnitPrice(p.Price, p.Discount)
}
