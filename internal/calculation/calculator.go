package calculation

import (
	"fmt"
	"time"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculationSettings carries the policy knobs of the monthly benefit
// calculation. All of them are fail-fast validated; the calculation itself
// is a total function once the settings are accepted.
type CalculationSettings struct {
	// TrivialLimit suppresses payouts below this amount outside December.
	TrivialLimit decimal.Decimal `yaml:"trivial_limit" json:"trivial_limit"`
	// StickyThreshold reuses last month's amount when the newly computed one
	// differs by less than this relative fraction. Zero disables stickiness.
	StickyThreshold decimal.Decimal `yaml:"sticky_threshold" json:"sticky_threshold"`
	// SafetyFactor scales the estimated year benefit outside December to
	// front-load slightly generous early-year estimates.
	SafetyFactor decimal.Decimal `yaml:"safety_factor" json:"safety_factor"`

	Quarantine QuarantineSettings `yaml:"quarantine" json:"quarantine"`

	// EngineA and EngineB name the default estimation engines per income
	// type; persons may override them individually.
	EngineA string `yaml:"engine_a" json:"engine_a"`
	EngineB string `yaml:"engine_b" json:"engine_b"`
}

// DefaultCalculationSettings mirrors the production defaults.
func DefaultCalculationSettings() CalculationSettings {
	return CalculationSettings{
		TrivialLimit:    decimal.NewFromInt(150),
		StickyThreshold: decimal.NewFromFloat(0.05),
		SafetyFactor:    decimal.NewFromInt(1),
		Quarantine: QuarantineSettings{
			Enforce:          true,
			OverpaymentLimit: decimal.NewFromInt(100),
			IfWrongPayout:    true,
			IfEarnsTooMuch:   true,
			IfEarnsTooLittle: false,
			Weights:          DefaultQuarantineWeights(),
		},
		EngineA: DefaultEngineA,
		EngineB: DefaultEngineB,
	}
}

// Validate rejects settings the calculation is not defined for.
func (s CalculationSettings) Validate(engines *EngineRegistry) error {
	if s.TrivialLimit.IsNegative() {
		return fmt.Errorf("trivial_limit must be non-negative, got %s", s.TrivialLimit)
	}
	if s.StickyThreshold.IsNegative() {
		return fmt.Errorf("sticky_threshold must be non-negative, got %s", s.StickyThreshold)
	}
	if s.SafetyFactor.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("safety_factor must be at least 1, got %s", s.SafetyFactor)
	}
	if err := s.Quarantine.ValidateWeights(); err != nil {
		return err
	}
	for _, pair := range []struct {
		name       string
		incomeType domain.IncomeType
	}{
		{s.EngineA, domain.IncomeTypeA},
		{s.EngineB, domain.IncomeTypeB},
	} {
		engine, err := engines.Get(pair.name)
		if err != nil {
			return err
		}
		if err := validFor(engine, pair.incomeType); err != nil {
			return fmt.Errorf("engine %s cannot estimate %s income: %w", pair.name, pair.incomeType, err)
		}
	}
	return nil
}

// PersonMonthInput is the read-only snapshot one person-month calculation
// consumes. Month N depends only on months 1..N-1's committed payouts; the
// caller commits results in month order.
type PersonMonthInput struct {
	Context PersonContext

	// Annually assessed deductions applied to the calculation basis.
	BExpenses         decimal.Decimal
	CatchsaleExpenses decimal.Decimal

	// ManualAnnualIncome, when set, replaces the whole calculation basis
	// with an administratively decided figure.
	ManualAnnualIncome *decimal.Decimal

	// Paused zeroes the payout entirely, December included.
	Paused bool

	// History holds the committed payouts this month depends on.
	History domain.PayoutHistory

	// Verdict is the quarantine decision for this calculation year.
	Verdict domain.QuarantineVerdict

	// ActualYearResult is the realized year income, known only once December
	// data exists. Used purely for the ActualYearBenefit diagnostic.
	ActualYearResult *decimal.Decimal

	// EngineA and EngineB override the configured default engines.
	EngineA string
	EngineB string
}

// MonthlyBenefitCalculator orchestrates the estimation engines, the benefit
// curve and the quarantine policy into one payable amount per person-month.
// It holds no mutable state; computations for different persons may run
// concurrently.
type MonthlyBenefitCalculator struct {
	Curve    BenefitCurveParameters
	Engines  *EngineRegistry
	Settings CalculationSettings
	Logger   Logger
}

// NewMonthlyBenefitCalculator validates the curve and settings and returns
// a ready calculator.
func NewMonthlyBenefitCalculator(curve BenefitCurveParameters, settings CalculationSettings) (*MonthlyBenefitCalculator, error) {
	engines := NewEngineRegistry()
	if err := curve.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Validate(engines); err != nil {
		return nil, err
	}
	return &MonthlyBenefitCalculator{
		Curve:    curve,
		Engines:  engines,
		Settings: settings,
		Logger:   NopLogger{},
	}, nil
}

// SetLogger installs a logger; nil restores the no-op default.
func (c *MonthlyBenefitCalculator) SetLogger(l Logger) {
	if l == nil {
		c.Logger = NopLogger{}
		return
	}
	c.Logger = l
}

// EstimateAnnualIncome runs one engine over the context's record window and
// returns the resulting estimate record.
func (c *MonthlyBenefitCalculator) EstimateAnnualIncome(ctx *PersonContext, incomeType domain.IncomeType, engineName string) (domain.AnnualEstimate, error) {
	engine, err := c.Engines.Get(engineName)
	if err != nil {
		return domain.AnnualEstimate{}, err
	}
	estimate, err := engine.Estimate(ctx, incomeType)
	if err != nil {
		return domain.AnnualEstimate{}, err
	}
	return domain.AnnualEstimate{
		PersonID:            ctx.PersonID,
		Year:                ctx.Year,
		Month:               ctx.Month,
		Engine:              engine.Name(),
		IncomeType:          incomeType,
		EstimatedYearResult: estimate,
	}, nil
}

func (c *MonthlyBenefitCalculator) engineFor(override, fallback string) (EstimationEngine, error) {
	name := override
	if name == "" {
		name = fallback
	}
	return c.Engines.Get(name)
}

// Calculate computes the payable benefit for one person-month. All data
// absence degrades to zero; only configuration errors (bad month, unknown
// engine, invalid engine/income-type pair) are returned.
func (c *MonthlyBenefitCalculator) Calculate(input PersonMonthInput) (domain.MonthlyPayout, error) {
	ctx := &input.Context
	month := ctx.Month
	if month < 1 || month > 12 {
		return domain.MonthlyPayout{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}

	basis := decimal.Zero
	hasSignal := false
	if record := ctx.CurrentRecord(); record != nil {
		hasSignal = record.HasSignal
	}

	if hasSignal {
		engineA, err := c.engineFor(input.EngineA, c.Settings.EngineA)
		if err != nil {
			return domain.MonthlyPayout{}, err
		}
		engineB, err := c.engineFor(input.EngineB, c.Settings.EngineB)
		if err != nil {
			return domain.MonthlyPayout{}, err
		}
		estimateA, err := engineA.Estimate(ctx, domain.IncomeTypeA)
		if err != nil {
			return domain.MonthlyPayout{}, err
		}
		annualB, err := engineB.Estimate(ctx, domain.IncomeTypeB)
		if err != nil {
			return domain.MonthlyPayout{}, err
		}
		basis = estimateA.Add(annualB).Sub(input.BExpenses).Sub(input.CatchsaleExpenses)
		if input.ManualAnnualIncome != nil {
			basis = *input.ManualAnnualIncome
		}
		if basis.IsNegative() {
			basis = decimal.Zero
		}
	}

	safetyFactor := c.Settings.SafetyFactor
	if month == 12 {
		safetyFactor = decimal.NewFromInt(1)
	}
	estimatedYearBenefit := c.Curve.Calculate(basis).Mul(safetyFactor)

	priorTransferred := input.History.PriorTransferred(month)
	remaining := estimatedYearBenefit.Sub(priorTransferred)
	benefit := decimal.Zero

	// Without a tax-reporting signal the month pays nothing; only the pause
	// and quarantine overrides below still apply.
	if hasSignal {
		monthsLeft := decimal.NewFromInt(int64(13 - month))
		benefit = remaining.DivRound(monthsLeft, 2)
		if benefit.IsNegative() {
			benefit = decimal.Zero
		}

		if month != 12 {
			if benefit.LessThan(c.Settings.TrivialLimit) {
				benefit = decimal.Zero
			}
			if month != 1 && c.Settings.StickyThreshold.IsPositive() {
				lastMonth := input.History.LastMonth(month)
				if lastMonth.IsPositive() {
					relativeChange := benefit.Sub(lastMonth).Abs().Div(lastMonth)
					if relativeChange.LessThan(c.Settings.StickyThreshold) {
						benefit = lastMonth
					}
				}
			}
		}
	}

	if input.Paused {
		benefit = decimal.Zero
	}

	// Quarantined persons receive a configured fraction of the still-unpaid
	// remainder each month instead of the normal spread.
	if c.Settings.Quarantine.Enforce && input.Verdict.InQuarantine && !input.Paused {
		benefit = c.quarantineBenefit(month, remaining)
	}

	if benefit.IsNegative() {
		benefit = decimal.Zero
	}
	benefit = benefit.Ceil()

	payout := domain.MonthlyPayout{
		PersonID:                ctx.PersonID,
		Year:                    ctx.Year,
		Month:                   month,
		BenefitCalculated:       benefit.IntPart(),
		PriorBenefitTransferred: priorTransferred,
		RemainingBenefitForYear: remaining.Sub(benefit),
		EstimatedYearResult:     basis,
		EstimatedYearBenefit:    estimatedYearBenefit,
	}
	if input.ActualYearResult != nil {
		actual := c.Curve.Calculate(*input.ActualYearResult)
		payout.ActualYearBenefit = &actual
	}
	return payout, nil
}

// quarantineBenefit releases weight[month]/12 of the year's benefit,
// expressed as a fraction of the not-yet-released remainder so that amounts
// already paid out under the schedule are not released twice:
//
//	benefit = remaining * (w/12) / (1 - sum(prior weights)/12)
//	        = remaining * w / (12 - sum(prior weights))
func (c *MonthlyBenefitCalculator) quarantineBenefit(month int, remaining decimal.Decimal) decimal.Decimal {
	weights := c.Settings.Quarantine.Weights
	priorWeightSum := decimal.Zero
	for m := 1; m < month; m++ {
		priorWeightSum = priorWeightSum.Add(weights[m-1])
	}
	unreleased := twelve.Sub(priorWeightSum)
	if !unreleased.IsPositive() {
		return decimal.Zero
	}
	return remaining.Mul(weights[month-1]).DivRound(unreleased, 2)
}

// PersonYearInput bundles everything needed to run a person's full year in
// month order.
type PersonYearInput struct {
	PersonID string
	Year     int

	// Records covers up to the trailing 24 months plus the calculation year.
	Records []domain.MonthlyIncomeData

	Assessments        []domain.Assessment
	AnnualBIncomeFinal decimal.Decimal
	AnnualUIncome      decimal.Decimal
	BExpenses          decimal.Decimal
	CatchsaleExpenses  decimal.Decimal
	ManualAnnualIncome *decimal.Decimal
	Paused             bool

	// PriorDecemberBenefit is the committed benefit for month 12 of the
	// prior year (month 0 of this year's payout chain).
	PriorDecemberBenefit decimal.Decimal

	// PriorYear feeds the quarantine detector; nil means no history.
	PriorYear *PriorYearOutcome

	// EngineA and EngineB override the configured default engines.
	EngineA string
	EngineB string
}

func (in PersonYearInput) contextForMonth(month int) PersonContext {
	current := domain.YearMonth{Year: in.Year, Month: month}
	var visible []domain.MonthlyIncomeData
	for _, r := range in.Records {
		if !r.YearMonth().After(current) {
			visible = append(visible, r)
		}
	}
	return PersonContext{
		PersonID:           in.PersonID,
		Year:               in.Year,
		Month:              month,
		Records:            visible,
		Assessments:        in.Assessments,
		AnnualBIncomeFinal: in.AnnualBIncomeFinal,
		AnnualUIncome:      in.AnnualUIncome,
	}
}

// actualYearResult is the realized A+B income of the calculation year,
// knowable only once the December record exists.
func (in PersonYearInput) actualYearResult() decimal.Decimal {
	total := decimal.Zero
	for _, r := range in.Records {
		if r.Year == in.Year {
			total = total.Add(r.AIncome).Add(r.BIncome)
		}
	}
	return total
}

// RunYear computes months 1 through 12 sequentially, committing each month's
// payout before the next month reads it. The quarantine verdict is derived
// once from the prior year.
func (c *MonthlyBenefitCalculator) RunYear(in PersonYearInput) ([]domain.MonthlyPayout, error) {
	detector := NewQuarantineDetector(c.Curve, c.Settings.Quarantine)
	verdict := detector.Evaluate(in.PersonID, in.Year, in.PriorYear)

	history := domain.PayoutHistory{
		Benefits:      make(map[int]decimal.Decimal, 12),
		PriorDecember: in.PriorDecemberBenefit,
	}

	payouts := make([]domain.MonthlyPayout, 0, 12)
	for month := 1; month <= 12; month++ {
		input := PersonMonthInput{
			Context:            in.contextForMonth(month),
			BExpenses:          in.BExpenses,
			CatchsaleExpenses:  in.CatchsaleExpenses,
			ManualAnnualIncome: in.ManualAnnualIncome,
			Paused:             in.Paused,
			History:            history,
			Verdict:            verdict,
			EngineA:            in.EngineA,
			EngineB:            in.EngineB,
		}
		if month == 12 {
			actual := in.actualYearResult()
			input.ActualYearResult = &actual
		}
		payout, err := c.Calculate(input)
		if err != nil {
			return nil, fmt.Errorf("month %d: %w", month, err)
		}
		history.Benefits[month] = decimal.NewFromInt(payout.BenefitCalculated)
		payouts = append(payouts, payout)
	}
	return payouts, nil
}

// PersonResult is one person's computed year.
type PersonResult struct {
	PersonID string                   `json:"person_id"`
	Verdict  domain.QuarantineVerdict `json:"verdict"`
	Payouts  []domain.MonthlyPayout   `json:"payouts"`
}

// RunResult aggregates a calculation run for output rendering.
type RunResult struct {
	Year    int                    `json:"year"`
	Curve   BenefitCurveParameters `json:"curve"`
	Persons []PersonResult         `json:"persons"`
}

// PayoutDate returns the disbursement date for a month's benefit: the third
// Tuesday of that month.
func PayoutDate(year, month int) time.Time {
	d := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	tuesdays := 0
	for {
		if d.Weekday() == time.Tuesday {
			tuesdays++
			if tuesdays == 3 {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}
