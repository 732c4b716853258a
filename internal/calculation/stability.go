package calculation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Shape parameters for the stability mapping; they control how quickly the
// score decays towards zero as volatility grows.
const (
	stabilityS = 0.4
	stabilityK = 2.5
)

// mapBetweenZeroAndOne converts a normalized standard deviation into a score
// in (0, 1]: exp(-(std^k)/(s^k)).
func mapBetweenZeroAndOne(std, s, k float64) float64 {
	return math.Exp(-math.Pow(std, k) / math.Pow(s, k))
}

// StabilityScore rates how stable a monthly income series is: 1 is perfectly
// stable, values near 0 are highly volatile. The series is normalized by its
// mean before the deviation is measured, so the score is scale-free. No
// income at all is defined as perfectly stable.
func StabilityScore(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.NewFromInt(1)
	}
	mean := decimal.Avg(values[0], values[1:]...)
	if mean.IsZero() {
		return decimal.NewFromInt(1)
	}

	meanF, _ := mean.Float64()
	sumSq := 0.0
	for _, v := range values {
		f, _ := v.Float64()
		norm := f/meanF - 1
		sumSq += norm * norm
	}
	std := math.Sqrt(sumSq / float64(len(values)))
	return decimal.NewFromFloat(mapBetweenZeroAndOne(std, stabilityS, stabilityK)).Round(4)
}
