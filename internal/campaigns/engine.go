package campaigns

import (
	"context"
	"fmt"

	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/pkg/enums"
	"github.com/ilmekten/shop-backend/pkg/money"
)

// Applied is one triggered campaign on a receipt. Gift lines carry no amount;
// they only announce the free item. Discount lines carry the shaved amount.
type Applied struct {
	CampaignID    int64              `json:"campaignId"`
	Kind          enums.CampaignKind `json:"type"`
	Text          string             `json:"text"`
	Amount        int64              `json:"amount"`
	GiftProductID int64              `json:"giftProductId,omitempty"`
}

// ProductNamer resolves gift product names for receipt text.
type ProductNamer interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Engine evaluates active campaigns against cart aggregates. It holds no
// state of its own; every call works purely off its arguments.
type Engine struct {
	products ProductNamer
}

func NewEngine(products ProductNamer) *Engine {
	return &Engine{products: products}
}

// Evaluate returns the receipt lines for every campaign the cart satisfies.
// All satisfied campaigns stack; a gift for the same product is announced
// only once even when several campaigns award it.
func (e *Engine) Evaluate(ctx context.Context, active []Campaign, totalUnits int64, subtotal int64) []Applied {
	applied := make([]Applied, 0, len(active))
	seenGifts := map[int64]bool{}

	for _, c := range active {
		switch c.Kind {
		case enums.CampaignKindGift:
			if totalUnits < c.MinQuantity {
				continue
			}
			if seenGifts[c.GiftProductID] {
				continue
			}
			seenGifts[c.GiftProductID] = true
			applied = append(applied, Applied{
				CampaignID:    c.ID,
				Kind:          c.Kind,
				Text:          e.giftText(ctx, c),
				GiftProductID: c.GiftProductID,
			})
		case enums.CampaignKindDiscount:
			if subtotal < c.MinAmount {
				continue
			}
			applied = append(applied, Applied{
				CampaignID: c.ID,
				Kind:       c.Kind,
				Text:       fmt.Sprintf("%%%d indirim", c.DiscountPercent),
				Amount:     money.RoundPercent(subtotal, c.DiscountPercent),
			})
		}
	}
	return applied
}

func (e *Engine) giftText(ctx context.Context, c Campaign) string {
	if e.products != nil {
		if p, err := e.products.FindByID(ctx, c.GiftProductID); err == nil {
			return fmt.Sprintf("Hediye: %s", p.Name)
		}
	}
	return "Hediye"
}
