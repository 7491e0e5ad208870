package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundPercentHalfUp(t *testing.T) {
	assert.Equal(t, int64(80), RoundPercent(800, 10))
	assert.Equal(t, int64(1), RoundPercent(5, 10))   // 0.5 rounds up
	assert.Equal(t, int64(33), RoundPercent(325, 10)) // 32.5 rounds up
	assert.Equal(t, int64(0), RoundPercent(0, 50))
	assert.Equal(t, int64(0), RoundPercent(100, 0))
}

func TestDiscountedUnitPrice(t *testing.T) {
	assert.Equal(t, int64(400), DiscountedUnitPrice(400, 0))
	assert.Equal(t, int64(360), DiscountedUnitPrice(400, 10))
	assert.Equal(t, int64(5), DiscountedUnitPrice(5, 10)) // 4.5 rounds up
	assert.Equal(t, int64(0), DiscountedUnitPrice(400, 100))
}

func TestCap(t *testing.T) {
	assert.Equal(t, int64(800), Cap(1000, 800))
	assert.Equal(t, int64(50), Cap(50, 800))
	assert.Equal(t, int64(0), Cap(-5, 800))
}
