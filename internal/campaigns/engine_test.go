package campaigns

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmekten/shop-backend/internal/catalog"
	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

type namerStub struct {
	names map[int64]string
}

func (n *namerStub) FindByID(_ context.Context, id int64) (*catalog.Product, error) {
	if name, ok := n.names[id]; ok {
		return &catalog.Product{ID: id, Name: name}, nil
	}
	return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %d not found", id)
}

func TestEvaluateGiftThreshold(t *testing.T) {
	engine := NewEngine(&namerStub{names: map[int64]string{7: "Mini Sabun"}})
	active := []Campaign{
		{ID: 1, Kind: enums.CampaignKindGift, Active: true, MinQuantity: 3, GiftProductID: 7},
	}

	applied := engine.Evaluate(context.Background(), active, 2, 10000)
	assert.Empty(t, applied)

	applied = engine.Evaluate(context.Background(), active, 3, 10000)
	require.Len(t, applied, 1)
	assert.Equal(t, "Hediye: Mini Sabun", applied[0].Text)
	assert.Zero(t, applied[0].Amount)
	assert.Equal(t, int64(7), applied[0].GiftProductID)
}

func TestEvaluateDiscountThreshold(t *testing.T) {
	engine := NewEngine(nil)
	active := []Campaign{
		{ID: 2, Kind: enums.CampaignKindDiscount, Active: true, MinAmount: 50000, DiscountPercent: 10},
	}

	applied := engine.Evaluate(context.Background(), active, 1, 49999)
	assert.Empty(t, applied)

	applied = engine.Evaluate(context.Background(), active, 1, 50000)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(5000), applied[0].Amount)
}

func TestEvaluateCampaignsStack(t *testing.T) {
	engine := NewEngine(&namerStub{names: map[int64]string{7: "Mini Sabun"}})
	active := []Campaign{
		{ID: 1, Kind: enums.CampaignKindGift, MinQuantity: 2, GiftProductID: 7},
		{ID: 2, Kind: enums.CampaignKindDiscount, MinAmount: 10000, DiscountPercent: 10},
		{ID: 3, Kind: enums.CampaignKindDiscount, MinAmount: 20000, DiscountPercent: 5},
	}

	applied := engine.Evaluate(context.Background(), active, 4, 30000)
	require.Len(t, applied, 3)
	// Both discount percentages apply to the same pre-campaign subtotal.
	assert.Equal(t, int64(3000), applied[1].Amount)
	assert.Equal(t, int64(1500), applied[2].Amount)
}

func TestEvaluateDeduplicatesGiftsByProduct(t *testing.T) {
	engine := NewEngine(&namerStub{names: map[int64]string{7: "Mini Sabun"}})
	active := []Campaign{
		{ID: 1, Kind: enums.CampaignKindGift, MinQuantity: 2, GiftProductID: 7},
		{ID: 2, Kind: enums.CampaignKindGift, MinQuantity: 3, GiftProductID: 7},
	}

	applied := engine.Evaluate(context.Background(), active, 5, 0)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(1), applied[0].CampaignID)
}

func TestEvaluateGiftForDeletedProduct(t *testing.T) {
	engine := NewEngine(&namerStub{names: map[int64]string{}})
	active := []Campaign{
		{ID: 1, Kind: enums.CampaignKindGift, MinQuantity: 1, GiftProductID: 42},
	}

	applied := engine.Evaluate(context.Background(), active, 1, 0)
	require.Len(t, applied, 1)
	assert.Equal(t, "Hediye", applied[0].Text)
}

func TestRegistryCRUD(t *testing.T) {
	store := kvstore.NewMemory()
	reg, err := NewRegistry(context.Background(), store)
	require.NoError(t, err)
	ctx := context.Background()

	created, err := reg.Create(ctx, CampaignInput{
		Kind: enums.CampaignKindDiscount, Name: "winter", Active: true, MinAmount: 10000, DiscountPercent: 15,
	})
	require.NoError(t, err)
	assert.Len(t, reg.Active(ctx), 1)

	_, err = reg.Update(ctx, created.ID, CampaignInput{
		Kind: enums.CampaignKindDiscount, Name: "winter", Active: false, MinAmount: 10000, DiscountPercent: 15,
	})
	require.NoError(t, err)
	assert.Empty(t, reg.Active(ctx))
	assert.Len(t, reg.List(ctx), 1)

	reloaded, err := NewRegistry(ctx, store)
	require.NoError(t, err)
	assert.Len(t, reloaded.List(ctx), 1)

	require.NoError(t, reg.Delete(ctx, created.ID))
	assert.Empty(t, reg.List(ctx))
}

func TestRegistryValidation(t *testing.T) {
	store := kvstore.NewMemory()
	reg, err := NewRegistry(context.Background(), store)
	require.NoError(t, err)

	_, err = reg.Create(context.Background(), CampaignInput{
		Kind: enums.CampaignKindGift, MinQuantity: 2,
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())

	_, err = reg.Create(context.Background(), CampaignInput{
		Kind: enums.CampaignKindDiscount, MinAmount: 100, DiscountPercent: 150,
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
