package calculation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// BenefitCurveParameters defines the statutory piecewise-linear mapping from
// annual income to annual benefit for one calendar year. The curve has five
// segments: flat zero below the allowances, a linear ramp-up, a plateau at
// MaxBenefit, a linear ramp-down above ScaledownCeiling, and flat zero again.
type BenefitCurveParameters struct {
	BenefitRatePercent   decimal.Decimal `yaml:"benefit_rate_percent" json:"benefit_rate_percent"`
	PersonalAllowance    decimal.Decimal `yaml:"personal_allowance" json:"personal_allowance"`
	StandardAllowance    decimal.Decimal `yaml:"standard_allowance" json:"standard_allowance"`
	MaxBenefit           decimal.Decimal `yaml:"max_benefit" json:"max_benefit"`
	ScaledownRatePercent decimal.Decimal `yaml:"scaledown_rate_percent" json:"scaledown_rate_percent"`
	ScaledownCeiling     decimal.Decimal `yaml:"scaledown_ceiling" json:"scaledown_ceiling"`
}

var percentFactor = decimal.NewFromFloat(0.01)

// BenefitRate is BenefitRatePercent expressed as a fraction.
func (p BenefitCurveParameters) BenefitRate() decimal.Decimal {
	return p.BenefitRatePercent.Mul(percentFactor)
}

// ScaledownRate is ScaledownRatePercent expressed as a fraction.
func (p BenefitCurveParameters) ScaledownRate() decimal.Decimal {
	return p.ScaledownRatePercent.Mul(percentFactor)
}

// Allowance is the combined personal and standard allowance.
func (p BenefitCurveParameters) Allowance() decimal.Decimal {
	return p.PersonalAllowance.Add(p.StandardAllowance)
}

// Validate rejects parameter sets the statute does not define a sensible
// curve for. The formula itself is total for any non-negative inputs; the
// ceiling check guards against a degenerate curve where the ramp-down starts
// before the ramp-up.
func (p BenefitCurveParameters) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"benefit_rate_percent", p.BenefitRatePercent},
		{"personal_allowance", p.PersonalAllowance},
		{"standard_allowance", p.StandardAllowance},
		{"max_benefit", p.MaxBenefit},
		{"scaledown_rate_percent", p.ScaledownRatePercent},
		{"scaledown_ceiling", p.ScaledownCeiling},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return fmt.Errorf("benefit curve: %s must be non-negative, got %s", f.name, f.value)
		}
	}
	if !p.ScaledownCeiling.GreaterThan(p.Allowance()) {
		return fmt.Errorf("benefit curve: scaledown_ceiling (%s) must exceed personal_allowance + standard_allowance (%s)",
			p.ScaledownCeiling, p.Allowance())
	}
	return nil
}

// Calculate maps an annual income to the annual benefit, rounded to two
// decimal places (half up).
func (p BenefitCurveParameters) Calculate(yearIncome decimal.Decimal) decimal.Decimal {
	zero := decimal.Zero
	rateable := decimal.Max(yearIncome.Sub(p.Allowance()), zero)
	scaledownAmount := decimal.Max(yearIncome.Sub(p.ScaledownCeiling), zero)
	risenBenefit := decimal.Min(p.BenefitRate().Mul(rateable), p.MaxBenefit)
	benefit := decimal.Max(risenBenefit.Sub(p.ScaledownRate().Mul(scaledownAmount)), zero)
	return benefit.Round(2)
}

// CurvePoint is one (income, benefit) breakpoint of the curve polyline.
type CurvePoint struct {
	Income  decimal.Decimal `json:"income"`
	Benefit decimal.Decimal `json:"benefit"`
}

// GraphPoints returns the minimal ordered polyline of the curve: the x
// positions where adjacent formula branches intersect, deduplicated, with
// negative candidates discarded and a flat tail of identical benefit values
// collapsed to its first point. Linear interpolation between consecutive
// points reproduces Calculate for any income inside the polyline's range.
func (p BenefitCurveParameters) GraphPoints() []CurvePoint {
	allowance := p.Allowance()

	candidates := []decimal.Decimal{
		decimal.Zero,
		allowance,
		p.ScaledownCeiling,
	}

	// Where the ramp-up reaches the plateau:
	// max_benefit = benefit_rate * (x - allowance)
	if !p.BenefitRatePercent.IsZero() {
		candidates = append(candidates, p.MaxBenefit.Div(p.BenefitRate()).Add(allowance))
	}

	// Where the ramp-up and ramp-down segments would intersect:
	// benefit_rate * (x - allowance) = scaledown_rate * (x - scaledown_ceiling)
	// => x = (benefit_rate*allowance - scaledown_rate*scaledown_ceiling)
	//        / (benefit_rate - scaledown_rate)
	if !p.BenefitRatePercent.Equal(p.ScaledownRatePercent) {
		x := p.BenefitRate().Mul(allowance).
			Sub(p.ScaledownRate().Mul(p.ScaledownCeiling)).
			Div(p.BenefitRate().Sub(p.ScaledownRate()))
		candidates = append(candidates, x)
	}

	// Where the ramp-down reaches zero:
	// max_benefit = scaledown_rate * (x - scaledown_ceiling)
	if !p.ScaledownRatePercent.IsZero() {
		candidates = append(candidates, p.MaxBenefit.Div(p.ScaledownRate()).Add(p.ScaledownCeiling))
	}

	// Deduplicate, discard negatives, sort ascending.
	seen := make(map[string]bool, len(candidates))
	xs := make([]decimal.Decimal, 0, len(candidates))
	for _, x := range candidates {
		if x.IsNegative() {
			continue
		}
		x = x.Round(2)
		key := x.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].LessThan(xs[j]) })

	points := make([]CurvePoint, 0, len(xs))
	for _, x := range xs {
		points = append(points, CurvePoint{Income: x, Benefit: p.Calculate(x)})
	}

	// Collapse a flat tail: points past the one where the curve last changes
	// add no information.
	for len(points) > 1 && points[len(points)-1].Benefit.Equal(points[len(points)-2].Benefit) {
		points = points[:len(points)-1]
	}
	return points
}
