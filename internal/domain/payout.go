package domain

import (
	"github.com/shopspring/decimal"
)

// AnnualEstimate is one engine's projection of a person's full-year income,
// computed as of a particular month. ActualYearResult is only knowable after
// December data exists and is used purely for accuracy scoring; the live
// calculation never reads it.
type AnnualEstimate struct {
	PersonID            string           `yaml:"person_id" json:"person_id"`
	Year                int              `yaml:"year" json:"year"`
	Month               int              `yaml:"month" json:"month"`
	Engine              string           `yaml:"engine" json:"engine"`
	IncomeType          IncomeType       `yaml:"income_type" json:"income_type"`
	EstimatedYearResult decimal.Decimal  `yaml:"estimated_year_result" json:"estimated_year_result"`
	ActualYearResult    *decimal.Decimal `yaml:"actual_year_result,omitempty" json:"actual_year_result,omitempty"`
}

// MonthlyPayout is the committed outcome of one person-month calculation.
// Later months read earlier months' BenefitCalculated as input, so the rows
// for a person-year form an append-only, month-ordered chain (month 0 being
// December of the prior year).
type MonthlyPayout struct {
	PersonID                string          `yaml:"person_id" json:"person_id"`
	Year                    int             `yaml:"year" json:"year"`
	Month                   int             `yaml:"month" json:"month"`
	BenefitCalculated       int64           `yaml:"benefit_calculated" json:"benefit_calculated"`
	PriorBenefitTransferred decimal.Decimal `yaml:"prior_benefit_transferred" json:"prior_benefit_transferred"`
	RemainingBenefitForYear decimal.Decimal `yaml:"remaining_benefit_for_year" json:"remaining_benefit_for_year"`

	// Diagnostics for accuracy scoring and display.
	EstimatedYearResult  decimal.Decimal  `yaml:"estimated_year_result" json:"estimated_year_result"`
	EstimatedYearBenefit decimal.Decimal  `yaml:"estimated_year_benefit" json:"estimated_year_benefit"`
	ActualYearBenefit    *decimal.Decimal `yaml:"actual_year_benefit,omitempty" json:"actual_year_benefit,omitempty"`
}

// QuarantineVerdict is the derived risk state for a person in a calculation
// year. It is recomputed from prior-year history on every run and never
// persisted.
type QuarantineVerdict struct {
	PersonID     string `yaml:"person_id" json:"person_id"`
	InQuarantine bool   `yaml:"in_quarantine" json:"in_quarantine"`
	Reason       string `yaml:"reason" json:"reason"`
}

// PayoutHistory carries the already-committed benefit amounts a month's
// calculation depends on: every earlier month of the same year plus December
// of the prior year.
type PayoutHistory struct {
	// Benefits maps month number (1-11) to the committed benefit for that
	// month of the current year.
	Benefits map[int]decimal.Decimal
	// PriorDecember is the committed benefit for month 12 of the prior year.
	PriorDecember decimal.Decimal
}

// PriorTransferred sums the committed benefits for months 1..month-1 plus
// the prior-year December amount.
func (h PayoutHistory) PriorTransferred(month int) decimal.Decimal {
	total := h.PriorDecember
	for m := 1; m < month; m++ {
		if amt, ok := h.Benefits[m]; ok {
			total = total.Add(amt)
		}
	}
	return total
}

// LastMonth returns the committed benefit for the month preceding the given
// one within the same year, or zero when none exists.
func (h PayoutHistory) LastMonth(month int) decimal.Decimal {
	if amt, ok := h.Benefits[month-1]; ok {
		return amt
	}
	return decimal.Zero
}
