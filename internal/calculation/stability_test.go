package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimals(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestStabilityScore(t *testing.T) {
	one := decimal.NewFromInt(1)

	t.Run("no income is perfectly stable", func(t *testing.T) {
		assert.True(t, StabilityScore(nil).Equal(one))
		assert.True(t, StabilityScore(decimals(0, 0, 0)).Equal(one))
	})

	t.Run("constant income is perfectly stable", func(t *testing.T) {
		assert.True(t, StabilityScore(decimals(20000, 20000, 20000)).Equal(one))
	})

	t.Run("mild variation scores high", func(t *testing.T) {
		score := StabilityScore(decimals(1000, 1200))
		assert.True(t, score.Equal(decimal.RequireFromString("0.9757")), "got %s", score)
	})

	t.Run("extreme variation scores near zero", func(t *testing.T) {
		score := StabilityScore(decimals(0, 2, 0, 2, 0, 2))
		assert.True(t, score.Equal(decimal.RequireFromString("0.0001")), "got %s", score)
	})

	t.Run("the score is scale-free", func(t *testing.T) {
		small := StabilityScore(decimals(1, 2, 3))
		large := StabilityScore(decimals(1000, 2000, 3000))
		assert.True(t, small.Equal(large))
	})

	t.Run("more volatility means a lower score", func(t *testing.T) {
		steady := StabilityScore(decimals(1000, 1100, 1000, 1100))
		jumpy := StabilityScore(decimals(1000, 3000, 1000, 3000))
		assert.True(t, jumpy.LessThan(steady))
	})
}
