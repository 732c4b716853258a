package calculation

import (
	"testing"
	"time"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCalculator(t *testing.T) *MonthlyBenefitCalculator {
	t.Helper()
	calc, err := NewMonthlyBenefitCalculator(statutoryCurve(), DefaultCalculationSettings())
	require.NoError(t, err)
	return calc
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestNewMonthlyBenefitCalculatorValidates(t *testing.T) {
	badCurve := statutoryCurve()
	badCurve.MaxBenefit = decimal.NewFromInt(-1)
	_, err := NewMonthlyBenefitCalculator(badCurve, DefaultCalculationSettings())
	assert.Error(t, err)

	badSettings := DefaultCalculationSettings()
	badSettings.EngineA = EngineSelfReported
	_, err = NewMonthlyBenefitCalculator(statutoryCurve(), badSettings)
	assert.Error(t, err, "SelfReportedEngine cannot estimate A income")

	badFactor := DefaultCalculationSettings()
	badFactor.SafetyFactor = decimal.NewFromFloat(0.9)
	_, err = NewMonthlyBenefitCalculator(statutoryCurve(), badFactor)
	assert.Error(t, err)
}

func TestCalculateRejectsBadMonth(t *testing.T) {
	calc := newTestCalculator(t)
	for _, month := range []int{0, 13, -1} {
		_, err := calc.Calculate(PersonMonthInput{
			Context: PersonContext{PersonID: "0101012222", Year: 2025, Month: month},
		})
		assert.Error(t, err, "month %d", month)
	}
}

// A person on a constant salary should draw the full year benefit in twelve
// nearly equal installments, with December absorbing the rounding drift.
func TestRunYearConstantIncome(t *testing.T) {
	calc := newTestCalculator(t)

	payouts, err := calc.RunYear(PersonYearInput{
		PersonID: "0101012222",
		Year:     2025,
		Records:  constantIncome(2025, 1, 12, 20000),
	})
	require.NoError(t, err)
	require.Len(t, payouts, 12)

	total := int64(0)
	for i, p := range payouts {
		assert.True(t, p.EstimatedYearResult.Equal(decimal.NewFromInt(240000)),
			"month %d estimate = %s", i+1, p.EstimatedYearResult)
		total += p.BenefitCalculated
	}
	for month := 1; month <= 11; month++ {
		assert.Equal(t, int64(1313), payouts[month-1].BenefitCalculated, "month %d", month)
	}
	assert.Equal(t, int64(1307), payouts[11].BenefitCalculated)
	assert.Equal(t, int64(15750), total, "the year must pay out exactly the curve amount")

	require.NotNil(t, payouts[11].ActualYearBenefit)
	assert.True(t, payouts[11].ActualYearBenefit.Equal(decimal.NewFromInt(15750)))
	for month := 1; month <= 11; month++ {
		assert.Nil(t, payouts[month-1].ActualYearBenefit, "month %d", month)
	}
}

func TestCalculateStickyThreshold(t *testing.T) {
	calc := newTestCalculator(t)

	history := domain.PayoutHistory{Benefits: map[int]decimal.Decimal{
		1: decimal.NewFromInt(1000),
		2: decimal.NewFromInt(1000),
		3: decimal.NewFromInt(1000),
		4: decimal.NewFromInt(1000),
	}}

	t.Run("small change reuses last month", func(t *testing.T) {
		// Basis chosen so the fresh amount is 1049, within 5% of 1000.
		payout, err := calc.Calculate(PersonMonthInput{
			Context:            *contextFor(2025, 5, constantIncome(2025, 1, 5, 1000)),
			ManualAnnualIncome: decimalPtr("138811.43"),
			History:            history,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), payout.BenefitCalculated)
	})

	t.Run("change at the threshold is applied", func(t *testing.T) {
		// Basis chosen so the fresh amount is 1051, a 5.1% change.
		payout, err := calc.Calculate(PersonMonthInput{
			Context:            *contextFor(2025, 5, constantIncome(2025, 1, 5, 1000)),
			ManualAnnualIncome: decimalPtr("138902.86"),
			History:            history,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1051), payout.BenefitCalculated)
	})

	t.Run("january is never sticky", func(t *testing.T) {
		payout, err := calc.Calculate(PersonMonthInput{
			Context:            *contextFor(2025, 1, constantIncome(2025, 1, 1, 1000)),
			ManualAnnualIncome: decimalPtr("138811.43"),
			History:            domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
		})
		require.NoError(t, err)
		// 12392 / 12 = 1032.67, ceiled.
		assert.Equal(t, int64(1033), payout.BenefitCalculated)
	})
}

func TestCalculateTrivialLimit(t *testing.T) {
	calc := newTestCalculator(t)

	t.Run("small monthly amounts are withheld", func(t *testing.T) {
		payout, err := calc.Calculate(PersonMonthInput{
			Context:            *contextFor(2025, 1, constantIncome(2025, 1, 1, 1000)),
			ManualAnnualIncome: decimalPtr("75000"),
			History:            domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
		})
		require.NoError(t, err)
		// 1225 / 12 = 102.08, below the 150 limit.
		assert.Equal(t, int64(0), payout.BenefitCalculated)
	})

	t.Run("december pays out regardless", func(t *testing.T) {
		payout, err := calc.Calculate(PersonMonthInput{
			Context:            *contextFor(2025, 12, constantIncome(2025, 1, 12, 1000)),
			ManualAnnualIncome: decimalPtr("75000"),
			History:            domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1225), payout.BenefitCalculated)
	})
}

func TestCalculatePaused(t *testing.T) {
	calc := newTestCalculator(t)
	payouts, err := calc.RunYear(PersonYearInput{
		PersonID: "0101012222",
		Year:     2025,
		Records:  constantIncome(2025, 1, 12, 20000),
		Paused:   true,
	})
	require.NoError(t, err)
	for i, p := range payouts {
		assert.Equal(t, int64(0), p.BenefitCalculated, "month %d", i+1)
		assert.True(t, p.EstimatedYearBenefit.Equal(decimal.NewFromInt(15750)),
			"pausing must not hide the estimate, month %d", i+1)
	}
}

// Without a tax-reporting signal a month pays nothing, and the estimate for
// that month degrades to zero.
func TestCalculateNoSignal(t *testing.T) {
	calc := newTestCalculator(t)

	record := monthlyA(2025, 1, 20000)
	record.HasSignal = false
	payout, err := calc.Calculate(PersonMonthInput{
		Context: PersonContext{
			PersonID: "0101012222",
			Year:     2025,
			Month:    1,
			Records:  []domain.MonthlyIncomeData{record},
		},
		History: domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), payout.BenefitCalculated)
	assert.True(t, payout.EstimatedYearResult.IsZero())
}

// Income that stops mid-year stops the payouts with it: a month without a
// record has no reporting signal and pays nothing.
func TestRunYearIncomeStops(t *testing.T) {
	calc := newTestCalculator(t)
	payouts, err := calc.RunYear(PersonYearInput{
		PersonID: "0101012222",
		Year:     2025,
		Records:  constantIncome(2025, 1, 6, 7000),
	})
	require.NoError(t, err)

	for month := 1; month <= 6; month++ {
		assert.Equal(t, int64(234), payouts[month-1].BenefitCalculated, "month %d", month)
	}
	for month := 7; month <= 12; month++ {
		assert.Equal(t, int64(0), payouts[month-1].BenefitCalculated, "month %d", month)
	}
}

func TestRunYearQuarantineSchedule(t *testing.T) {
	calc := newTestCalculator(t)

	payouts, err := calc.RunYear(PersonYearInput{
		PersonID:  "0101012222",
		Year:      2025,
		Records:   constantIncome(2025, 1, 12, 20000),
		PriorYear: priorWithOverpayment("100.01"),
	})
	require.NoError(t, err)

	for month := 1; month <= 9; month++ {
		assert.Equal(t, int64(0), payouts[month-1].BenefitCalculated, "month %d", month)
	}
	assert.Equal(t, int64(13125), payouts[9].BenefitCalculated)
	assert.Equal(t, int64(1313), payouts[10].BenefitCalculated)
	assert.Equal(t, int64(1312), payouts[11].BenefitCalculated)

	total := int64(0)
	for _, p := range payouts {
		total += p.BenefitCalculated
	}
	assert.Equal(t, int64(15750), total)
}

func TestRunYearQuarantineNotEnforced(t *testing.T) {
	settings := DefaultCalculationSettings()
	settings.Quarantine.Enforce = false
	calc, err := NewMonthlyBenefitCalculator(statutoryCurve(), settings)
	require.NoError(t, err)

	payouts, err := calc.RunYear(PersonYearInput{
		PersonID:  "0101012222",
		Year:      2025,
		Records:   constantIncome(2025, 1, 12, 20000),
		PriorYear: priorWithOverpayment("100.01"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1313), payouts[0].BenefitCalculated,
		"an unenforced verdict must not curtail the payout")
}

func TestCalculatePriorDecemberCountsAsTransferred(t *testing.T) {
	calc := newTestCalculator(t)

	payout, err := calc.Calculate(PersonMonthInput{
		Context:            *contextFor(2025, 1, constantIncome(2025, 1, 1, 1000)),
		ManualAnnualIncome: decimalPtr("158000"),
		History: domain.PayoutHistory{
			Benefits:      map[int]decimal.Decimal{},
			PriorDecember: decimal.NewFromInt(1000),
		},
	})
	require.NoError(t, err)
	assert.True(t, payout.PriorBenefitTransferred.Equal(decimal.NewFromInt(1000)))
	// (15750 - 1000) / 12 = 1229.17, ceiled.
	assert.Equal(t, int64(1230), payout.BenefitCalculated)
}

func TestCalculateExpensesReduceBasis(t *testing.T) {
	calc := newTestCalculator(t)

	payout, err := calc.Calculate(PersonMonthInput{
		Context:           *contextFor(2025, 1, constantIncome(2025, 1, 1, 20000)),
		BExpenses:         decimal.NewFromInt(50000),
		CatchsaleExpenses: decimal.NewFromInt(32000),
		History:           domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
	})
	require.NoError(t, err)
	// 240000 - 50000 - 32000 = 158000, the top of the ramp.
	assert.True(t, payout.EstimatedYearResult.Equal(decimal.NewFromInt(158000)))
	assert.True(t, payout.EstimatedYearBenefit.Equal(decimal.NewFromInt(15750)))
}

func TestCalculateNegativeBasisFlooredToZero(t *testing.T) {
	calc := newTestCalculator(t)

	payout, err := calc.Calculate(PersonMonthInput{
		Context:   *contextFor(2025, 1, constantIncome(2025, 1, 1, 1000)),
		BExpenses: decimal.NewFromInt(999999),
		History:   domain.PayoutHistory{Benefits: map[int]decimal.Decimal{}},
	})
	require.NoError(t, err)
	assert.True(t, payout.EstimatedYearResult.IsZero())
	assert.Equal(t, int64(0), payout.BenefitCalculated)
}

func TestPayoutDate(t *testing.T) {
	tests := []struct {
		year, month int
		expected    time.Time
	}{
		{2025, 1, time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)},
		{2025, 7, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)},
		{2026, 6, time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got := PayoutDate(tt.year, tt.month)
		assert.Equal(t, tt.expected, got, "%d-%02d", tt.year, tt.month)
		assert.Equal(t, time.Tuesday, got.Weekday())
	}
}
