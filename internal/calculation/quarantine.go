package calculation

import (
	"fmt"
	"math"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// QuarantineSettings configures the risk detector and the payout release
// schedule applied to quarantined persons.
type QuarantineSettings struct {
	Enforce          bool            `yaml:"enforce" json:"enforce"`
	OverpaymentLimit decimal.Decimal `yaml:"overpayment_limit" json:"overpayment_limit"`
	IfWrongPayout    bool            `yaml:"if_wrong_payout" json:"if_wrong_payout"`
	IfEarnsTooMuch   bool            `yaml:"if_earns_too_much" json:"if_earns_too_much"`
	IfEarnsTooLittle bool            `yaml:"if_earns_too_little" json:"if_earns_too_little"`

	// Weights holds 12 non-negative numbers summing to 12; month m of a
	// quarantined year releases Weights[m-1]/12 of the year's benefit. The
	// conventional schedule withholds everything until October.
	Weights []decimal.Decimal `yaml:"weights" json:"weights"`
}

// DefaultQuarantineWeights releases nothing through September, most of the
// benefit in October, and the rest in November and December.
func DefaultQuarantineWeights() []decimal.Decimal {
	weights := make([]decimal.Decimal, 12)
	for i := range weights {
		weights[i] = decimal.Zero
	}
	weights[9] = decimal.NewFromInt(10)
	weights[10] = decimal.NewFromInt(1)
	weights[11] = decimal.NewFromInt(1)
	return weights
}

// ValidateWeights rejects weight schedules the redistribution formula is not
// defined for.
func (s QuarantineSettings) ValidateWeights() error {
	if len(s.Weights) != 12 {
		return fmt.Errorf("quarantine weights must have 12 entries, got %d", len(s.Weights))
	}
	sum := decimal.Zero
	for i, w := range s.Weights {
		if w.IsNegative() {
			return fmt.Errorf("quarantine weight for month %d must be non-negative, got %s", i+1, w)
		}
		sum = sum.Add(w)
	}
	if !sum.Equal(twelve) {
		return fmt.Errorf("quarantine weights must sum to 12, got %s", sum)
	}
	return nil
}

// DecemberOutcome is the committed December row of a prior year, carrying
// the figures the wrong-payout check compares.
type DecemberOutcome struct {
	// BenefitTransferred is the benefit actually paid for December.
	BenefitTransferred decimal.Decimal
	// PriorBenefitTransferred is the total paid for January through November.
	PriorBenefitTransferred decimal.Decimal
	// ActualYearBenefit is the benefit the realized year income entitled the
	// person to.
	ActualYearBenefit decimal.Decimal
}

// PriorYearOutcome is the read-only year Y-1 history the detector evaluates.
// A nil outcome (no history at all) never quarantines.
type PriorYearOutcome struct {
	Records  []domain.MonthlyIncomeData
	December *DecemberOutcome
}

// QuarantineDetector decides, from year Y-1 outcomes, whether a person's
// year Y payments should be curtailed. Verdicts are derived on demand and
// never persisted.
type QuarantineDetector struct {
	Curve    BenefitCurveParameters
	Settings QuarantineSettings
}

// NewQuarantineDetector returns a detector for the given curve and settings.
func NewQuarantineDetector(curve BenefitCurveParameters, settings QuarantineSettings) *QuarantineDetector {
	return &QuarantineDetector{Curve: curve, Settings: settings}
}

// Evaluate computes the quarantine verdict for year from the prior year's
// outcome. InQuarantine is the OR of every enabled condition; the reason
// shown is the last-evaluated condition that triggered, in the order
// wrong payout, earns too much, earns too little.
func (d *QuarantineDetector) Evaluate(personID string, year int, prior *PriorYearOutcome) domain.QuarantineVerdict {
	verdict := domain.QuarantineVerdict{PersonID: personID, Reason: "-"}
	if prior == nil {
		return verdict
	}

	wrongPayout := d.wrongPayout(prior)
	earnsTooMuch, earnsTooLittle := d.earningsNearLimits(prior)

	if d.Settings.IfWrongPayout && wrongPayout {
		verdict.InQuarantine = true
		verdict.Reason = fmt.Sprintf("received too much benefit in %d", year-1)
	}
	if d.Settings.IfEarnsTooMuch && earnsTooMuch {
		verdict.InQuarantine = true
		verdict.Reason = fmt.Sprintf("earned too close to the upper income limit in %d", year-1)
	}
	if d.Settings.IfEarnsTooLittle && earnsTooLittle {
		verdict.InQuarantine = true
		verdict.Reason = fmt.Sprintf("earned too close to the lower income limit in %d", year-1)
	}
	return verdict
}

// wrongPayout triggers on overpayment strictly above the limit; an
// underpayment never quarantines.
func (d *QuarantineDetector) wrongPayout(prior *PriorYearOutcome) bool {
	dec := prior.December
	if dec == nil {
		return false
	}
	totalPaid := dec.PriorBenefitTransferred.Add(dec.BenefitTransferred)
	overpayment := totalPaid.Sub(dec.ActualYearBenefit)
	return overpayment.GreaterThan(d.Settings.OverpaymentLimit)
}

// earningsNearLimits checks whether the prior year's income volatility could
// have pushed the person across an eligibility boundary: the annual A+B
// income shifted down (up) by one standard deviation of the monthly values
// maps to zero benefit while the annual income itself does not.
func (d *QuarantineDetector) earningsNearLimits(prior *PriorYearOutcome) (tooMuch, tooLittle bool) {
	if len(prior.Records) == 0 {
		return false, false
	}
	monthly := make([]decimal.Decimal, 0, len(prior.Records))
	annual := decimal.Zero
	for _, r := range prior.Records {
		v := r.AIncome.Add(r.BIncome)
		monthly = append(monthly, v)
		annual = annual.Add(v)
	}
	std := sampleStdDev(monthly)

	annualBenefit := d.Curve.Calculate(annual)
	if annualBenefit.IsZero() {
		return false, false
	}
	lower := d.Curve.Calculate(annual.Sub(std))
	upper := d.Curve.Calculate(annual.Add(std))
	return upper.IsZero(), lower.IsZero()
}

// sampleStdDev is the n-1 standard deviation of the values; fewer than two
// values are defined as perfectly stable.
func sampleStdDev(values []decimal.Decimal) decimal.Decimal {
	n := len(values)
	if n < 2 {
		return decimal.Zero
	}
	mean := decimal.Avg(values[0], values[1:]...)
	sumSq := 0.0
	for _, v := range values {
		diff, _ := v.Sub(mean).Float64()
		sumSq += diff * diff
	}
	return decimal.NewFromFloat(math.Sqrt(sumSq / float64(n-1)))
}
