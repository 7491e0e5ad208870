// Package money holds the integer price arithmetic shared by the catalog,
// campaign and coupon engines. All amounts are minor-unit-free integers;
// rounding is half-up to match the storefront's historical totals.
package money

// RoundPercent returns round(amount * percent / 100) with half-up rounding.
// Non-positive inputs yield zero.
func RoundPercent(amount, percent int64) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return (amount*percent + 50) / 100
}

// DiscountedUnitPrice applies a product's own percent discount to its list
// price: round(price * (100 - discount) / 100).
func DiscountedUnitPrice(price, discount int64) int64 {
	if price <= 0 {
		return 0
	}
	if discount <= 0 {
		return price
	}
	if discount >= 100 {
		return 0
	}
	return (price*(100-discount) + 50) / 100
}

// Cap limits a discount so it can never push a total below zero.
func Cap(discount, total int64) int64 {
	if discount > total {
		return total
	}
	if discount < 0 {
		return 0
	}
	return discount
}
