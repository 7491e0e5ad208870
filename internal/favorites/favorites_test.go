package favorites

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmekten/shop-backend/pkg/kvstore"
)

func TestToggle(t *testing.T) {
	store := kvstore.NewMemory()
	svc, err := NewService(context.Background(), store)
	require.NoError(t, err)
	ctx := context.Background()

	on, err := svc.Toggle(ctx, 1)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = svc.Toggle(ctx, 2)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, []int64{1, 2}, svc.List(ctx))

	on, err = svc.Toggle(ctx, 1)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, []int64{2}, svc.List(ctx))

	reloaded, err := NewService(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, reloaded.List(ctx))
}
