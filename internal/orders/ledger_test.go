package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmekten/shop-backend/pkg/enums"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

func newTestLedger(t *testing.T) (*Ledger, kvstore.Store) {
	t.Helper()
	store := kvstore.NewMemory()
	ledger, err := NewLedger(context.Background(), store)
	require.NoError(t, err)
	return ledger, store
}

func draftWith(items ...Item) Draft {
	return Draft{
		Customer:      Customer{Name: "Ayşe Yılmaz", Phone: "5551234567", Address: "Çiçek Sk. 3", City: "İstanbul"},
		Items:         items,
		Subtotal:      1000,
		Total:         1000,
		PaymentMethod: enums.PaymentMethodCash,
	}
}

func TestCreateBumpsCollidingIDs(t *testing.T) {
	ledger, _ := newTestLedger(t)
	fixed := time.UnixMilli(1700000000000)
	ledger.now = func() time.Time { return fixed }
	ctx := context.Background()

	first, err := ledger.Create(ctx, draftWith())
	require.NoError(t, err)
	second, err := ledger.Create(ctx, draftWith())
	require.NoError(t, err)

	assert.Equal(t, int64(1700000000000), first.ID)
	assert.Equal(t, int64(1700000000001), second.ID)
	assert.Equal(t, enums.OrderStatusPending, first.Status)
}

func TestCreateNormalizesNilSlices(t *testing.T) {
	ledger, _ := newTestLedger(t)
	order, err := ledger.Create(context.Background(), draftWith())
	require.NoError(t, err)

	assert.NotNil(t, order.Items)
	assert.NotNil(t, order.Gifts)
	assert.NotNil(t, order.Campaigns)
}

func TestSetStatusFullMatrix(t *testing.T) {
	all := []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusProcessing,
		enums.OrderStatusCompleted,
		enums.OrderStatusCancelled,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				ledger, _ := newTestLedger(t)
				ctx := context.Background()
				order, err := ledger.Create(ctx, draftWith())
				require.NoError(t, err)

				if from != enums.OrderStatusPending {
					_, err = ledger.SetStatus(ctx, order.ID, from)
					require.NoError(t, err)
				}
				updated, err := ledger.SetStatus(ctx, order.ID, to)
				require.NoError(t, err)
				assert.Equal(t, to, updated.Status)
			})
		}
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	order, err := ledger.Create(ctx, draftWith())
	require.NoError(t, err)

	_, err = ledger.SetStatus(ctx, order.ID, enums.OrderStatus("shipped"))
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestListNewestFirst(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	ms := int64(1700000000000)
	ledger.now = func() time.Time { ms++; return time.UnixMilli(ms) }

	for i := 0; i < 3; i++ {
		_, err := ledger.Create(ctx, draftWith())
		require.NoError(t, err)
	}

	listed := ledger.List(ctx, Query{})
	require.Len(t, listed, 3)
	assert.Greater(t, listed[0].ID, listed[1].ID)
	assert.Greater(t, listed[1].ID, listed[2].ID)
}

func TestListFilters(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	ms := int64(1700000000000)
	ledger.now = func() time.Time { ms++; return time.UnixMilli(ms) }

	mug, err := ledger.Create(ctx, draftWith(Item{ProductID: 1, Name: "Seramik Kupa", Price: 500, Quantity: 2}))
	require.NoError(t, err)
	scarf, err := ledger.Create(ctx, draftWith(Item{ProductID: 2, Name: "Örgü Atkı", Price: 800, Quantity: 1}))
	require.NoError(t, err)

	_, err = ledger.SetStatus(ctx, scarf.ID, enums.OrderStatusCompleted)
	require.NoError(t, err)

	byStatus := ledger.List(ctx, Query{Status: enums.OrderStatusCompleted})
	require.Len(t, byStatus, 1)
	assert.Equal(t, scarf.ID, byStatus[0].ID)

	byName := ledger.List(ctx, Query{Search: "kupa"})
	require.Len(t, byName, 1)
	assert.Equal(t, mug.ID, byName[0].ID)

	byID := ledger.List(ctx, Query{Search: "1700000000001"})
	require.Len(t, byID, 1)
	assert.Equal(t, mug.ID, byID[0].ID)

	byPrefix := ledger.List(ctx, Query{Search: "17000000000"})
	assert.Len(t, byPrefix, 2)
}

func TestDelete(t *testing.T) {
	ledger, store := newTestLedger(t)
	ctx := context.Background()
	order, err := ledger.Create(ctx, draftWith())
	require.NoError(t, err)

	require.NoError(t, ledger.Delete(ctx, order.ID))
	assert.Empty(t, ledger.List(ctx, Query{}))

	reloaded, err := NewLedger(ctx, store)
	require.NoError(t, err)
	assert.Empty(t, reloaded.List(ctx, Query{}))

	err = ledger.Delete(ctx, order.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestItemsSnapshotSurvivesMutation(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	items := []Item{{ProductID: 1, Name: "Seramik Kupa", Price: 500, Quantity: 1}}
	order, err := ledger.Create(ctx, draftWith(items...))
	require.NoError(t, err)

	// Mutating the caller's slice after creation must not reach the ledger.
	items[0].Price = 1

	stored, err := ledger.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), stored.Items[0].Price)
}
