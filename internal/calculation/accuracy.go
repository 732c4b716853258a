package calculation

import (
	"math"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// MeanError is the signed mean deviation of the estimates from the realized
// result. Positive means the engine over-estimated on average.
func MeanError(actual decimal.Decimal, estimates []decimal.Decimal) decimal.Decimal {
	if len(estimates) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, e := range estimates {
		sum = sum.Add(e.Sub(actual))
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(estimates))), 4)
}

// RootMeanSqError is the root-mean-square deviation of the estimates from
// the realized result.
func RootMeanSqError(actual decimal.Decimal, estimates []decimal.Decimal) decimal.Decimal {
	if len(estimates) == 0 {
		return decimal.Zero
	}
	sumSq := 0.0
	for _, e := range estimates {
		diff, _ := e.Sub(actual).Float64()
		sumSq += diff * diff
	}
	return decimal.NewFromFloat(math.Sqrt(sumSq / float64(len(estimates)))).Round(4)
}

// EstimateSummary scores one engine's in-year estimates for a person and
// income type against the realized year result. The percentages are nil when
// the year cannot be evaluated: no December estimate, or a zero realized
// result.
type EstimateSummary struct {
	PersonID         string            `json:"person_id"`
	Engine           string            `json:"engine"`
	IncomeType       domain.IncomeType `json:"income_type"`
	MeanErrorPercent *decimal.Decimal  `json:"mean_error_percent,omitempty"`
	RMSEPercent      *decimal.Decimal  `json:"rmse_percent,omitempty"`
}

// SummarizeEstimates builds the accuracy summary for a sequence of monthly
// estimates, ordered by month. Months before the first estimate count as
// zero estimates, so an engine that only saw part of the year is penalized
// for the months it missed.
func SummarizeEstimates(personID, engine string, incomeType domain.IncomeType, estimates []domain.AnnualEstimate, actual decimal.Decimal) EstimateSummary {
	summary := EstimateSummary{PersonID: personID, Engine: engine, IncomeType: incomeType}
	if len(estimates) == 0 || estimates[len(estimates)-1].Month != 12 || actual.IsZero() {
		return summary
	}

	values := make([]decimal.Decimal, 0, 12)
	for i := len(estimates); i < 12; i++ {
		values = append(values, decimal.Zero)
	}
	for _, e := range estimates {
		values = append(values, e.EstimatedYearResult)
	}

	hundred := decimal.NewFromInt(100)
	meanErrPct := hundred.Mul(MeanError(actual, values)).DivRound(actual, 2)
	rmsePct := hundred.Mul(RootMeanSqError(actual, values)).DivRound(actual, 2)
	summary.MeanErrorPercent = &meanErrPct
	summary.RMSEPercent = &rmsePct
	return summary
}
