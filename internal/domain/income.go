package domain

import (
	"github.com/shopspring/decimal"
)

// IncomeType identifies the statutory classification of an income amount.
type IncomeType string

const (
	// IncomeTypeA is wage/salary income reported monthly by employers.
	IncomeTypeA IncomeType = "A"
	// IncomeTypeB is business/rental/self-employment income, normally known
	// only annually via tax assessment.
	IncomeTypeB IncomeType = "B"
	// IncomeTypeU is dividend income reported via annual declarations.
	IncomeTypeU IncomeType = "U"
)

// IncomeTypes lists every known income type in display order.
var IncomeTypes = []IncomeType{IncomeTypeA, IncomeTypeB, IncomeTypeU}

// YearMonth is a calendar month used for ordering income records.
type YearMonth struct {
	Year  int `yaml:"year" json:"year"`
	Month int `yaml:"month" json:"month"`
}

// Compare returns -1, 0 or 1 ordering ym against other chronologically.
func (ym YearMonth) Compare(other YearMonth) int {
	a := ym.Year*12 + ym.Month - 1
	b := other.Year*12 + other.Month - 1
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool { return ym.Compare(other) < 0 }

// After reports whether ym is strictly later than other.
func (ym YearMonth) After(other YearMonth) bool { return ym.Compare(other) > 0 }

// AddMonths returns ym shifted by n months (n may be negative).
func (ym YearMonth) AddMonths(n int) YearMonth {
	idx := ym.Year*12 + ym.Month - 1 + n
	return YearMonth{Year: idx / 12, Month: idx%12 + 1}
}

// MonthlyIncomeData holds the normalized income figures reported for one
// person-month. Amounts are non-negative; a missing report is represented by
// the absence of the record, not by a zeroed one.
type MonthlyIncomeData struct {
	PersonID  string          `yaml:"person_id" json:"person_id"`
	Year      int             `yaml:"year" json:"year"`
	Month     int             `yaml:"month" json:"month"`
	AIncome   decimal.Decimal `yaml:"a_income" json:"a_income"`
	BIncome   decimal.Decimal `yaml:"b_income" json:"b_income"`
	UIncome   decimal.Decimal `yaml:"u_income" json:"u_income"`
	HasSignal bool            `yaml:"has_signal" json:"has_signal"`
}

// YearMonth returns the record's calendar position.
func (m MonthlyIncomeData) YearMonth() YearMonth {
	return YearMonth{Year: m.Year, Month: m.Month}
}

// Amount returns the figure for the given income type. Unknown types fall
// back to B income, preserving the behavior of the upstream reporting chain.
func (m MonthlyIncomeData) Amount(t IncomeType) decimal.Decimal {
	switch t {
	case IncomeTypeA:
		return m.AIncome
	case IncomeTypeU:
		return m.UIncome
	default:
		return m.BIncome
	}
}

// TotalIncome returns A + B + U for the month.
func (m MonthlyIncomeData) TotalIncome() decimal.Decimal {
	return m.AIncome.Add(m.BIncome).Add(m.UIncome)
}
