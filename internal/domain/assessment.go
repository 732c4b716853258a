package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assessment holds the B-income figures from one tax-assessment record
// ("forskudsopgørelse"). The most recent assessment wins when several exist.
type Assessment struct {
	Created        time.Time       `yaml:"created" json:"created"`
	GrossBIncome   decimal.Decimal `yaml:"gross_b_income" json:"gross_b_income"`
	BusinessIncome decimal.Decimal `yaml:"business_income" json:"business_income"`
}

// AnnualBIncome is the assessed annual B income used as a calculation basis:
// gross B income with the separately-taxed business lines removed, floored
// at zero.
func (a Assessment) AnnualBIncome() decimal.Decimal {
	v := a.GrossBIncome.Sub(a.BusinessIncome)
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// LatestAssessment returns the most recently created assessment, or nil for
// an empty slice.
func LatestAssessment(assessments []Assessment) *Assessment {
	var latest *Assessment
	for i := range assessments {
		if latest == nil || assessments[i].Created.After(latest.Created) {
			latest = &assessments[i]
		}
	}
	return latest
}
