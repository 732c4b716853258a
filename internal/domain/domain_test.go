package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearMonthOrdering(t *testing.T) {
	jan := YearMonth{Year: 2025, Month: 1}
	dec := YearMonth{Year: 2024, Month: 12}

	assert.True(t, dec.Before(jan))
	assert.True(t, jan.After(dec))
	assert.Equal(t, 0, jan.Compare(YearMonth{Year: 2025, Month: 1}))
}

func TestYearMonthAddMonths(t *testing.T) {
	tests := []struct {
		name     string
		start    YearMonth
		n        int
		expected YearMonth
	}{
		{"within year", YearMonth{2025, 3}, 4, YearMonth{2025, 7}},
		{"across year end", YearMonth{2025, 11}, 3, YearMonth{2026, 2}},
		{"backwards within year", YearMonth{2025, 6}, -5, YearMonth{2025, 1}},
		{"backwards across year start", YearMonth{2025, 1}, -1, YearMonth{2024, 12}},
		{"trailing 24-month window start", YearMonth{2025, 6}, -23, YearMonth{2023, 7}},
		{"zero", YearMonth{2025, 6}, 0, YearMonth{2025, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.start.AddMonths(tt.n))
		})
	}
}

func TestMonthlyIncomeDataAmount(t *testing.T) {
	record := MonthlyIncomeData{
		AIncome: decimal.NewFromInt(100),
		BIncome: decimal.NewFromInt(200),
		UIncome: decimal.NewFromInt(300),
	}

	assert.True(t, record.Amount(IncomeTypeA).Equal(decimal.NewFromInt(100)))
	assert.True(t, record.Amount(IncomeTypeB).Equal(decimal.NewFromInt(200)))
	assert.True(t, record.Amount(IncomeTypeU).Equal(decimal.NewFromInt(300)))
	assert.True(t, record.Amount(IncomeType("X")).Equal(decimal.NewFromInt(200)),
		"unknown income types fall back to B")
	assert.True(t, record.TotalIncome().Equal(decimal.NewFromInt(600)))
}

func TestLatestAssessment(t *testing.T) {
	assert.Nil(t, LatestAssessment(nil))

	older := Assessment{
		Created:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		GrossBIncome: decimal.NewFromInt(50000),
	}
	newer := Assessment{
		Created:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		GrossBIncome: decimal.NewFromInt(60000),
	}

	latest := LatestAssessment([]Assessment{older, newer})
	require.NotNil(t, latest)
	assert.True(t, latest.GrossBIncome.Equal(decimal.NewFromInt(60000)))
}

func TestAssessmentAnnualBIncome(t *testing.T) {
	a := Assessment{
		GrossBIncome:   decimal.NewFromInt(120000),
		BusinessIncome: decimal.NewFromInt(20000),
	}
	assert.True(t, a.AnnualBIncome().Equal(decimal.NewFromInt(100000)))

	allBusiness := Assessment{
		GrossBIncome:   decimal.NewFromInt(10000),
		BusinessIncome: decimal.NewFromInt(15000),
	}
	assert.True(t, allBusiness.AnnualBIncome().IsZero(), "never negative")
}

func TestPayoutHistory(t *testing.T) {
	history := PayoutHistory{
		Benefits: map[int]decimal.Decimal{
			1: decimal.NewFromInt(1000),
			2: decimal.NewFromInt(1100),
		},
		PriorDecember: decimal.NewFromInt(900),
	}

	assert.True(t, history.PriorTransferred(1).Equal(decimal.NewFromInt(900)),
		"january only sees prior december")
	assert.True(t, history.PriorTransferred(3).Equal(decimal.NewFromInt(3000)))
	assert.True(t, history.LastMonth(3).Equal(decimal.NewFromInt(1100)))
	assert.True(t, history.LastMonth(1).IsZero(), "january has no preceding month this year")
	assert.True(t, history.LastMonth(5).IsZero(), "gaps read as zero")
}
