package orders

import (
	"time"

	"github.com/ilmekten/shop-backend/internal/campaigns"
	"github.com/ilmekten/shop-backend/pkg/enums"
)

// Customer is the delivery contact captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Notes   string `json:"notes,omitempty"`
}

// Item is a priced order line frozen at checkout time. Later catalog edits
// never touch it.
type Item struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// Gift is an awarded free item, recorded for the packer; it carries no price.
type Gift struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
}

// CouponInfo is the coupon snapshot on an order.
type CouponInfo struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// Order is an immutable receipt except for its status. IDs are the creation
// timestamp in milliseconds, bumped past collisions.
type Order struct {
	ID               int64               `json:"id"`
	Date             time.Time           `json:"date"`
	Customer         Customer            `json:"customer"`
	Items            []Item              `json:"items"`
	Gifts            []Gift              `json:"gifts"`
	Subtotal         int64               `json:"subtotal"`
	Discount         int64               `json:"discount"`
	CampaignDiscount int64               `json:"campaignDiscount"`
	Coupon           *CouponInfo         `json:"coupon"`
	Total            int64               `json:"total"`
	Status           enums.OrderStatus   `json:"status"`
	PaymentMethod    enums.PaymentMethod `json:"paymentMethod"`
	Campaigns        []campaigns.Applied `json:"campaigns"`
}
