package calculation

import (
	"fmt"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine names double as registry keys and as the identifiers stored on
// AnnualEstimate records.
const (
	EngineInYearExtrapolation  = "InYearExtrapolationEngine"
	EngineTwelveMonthSummation = "TwelveMonthsSummationEngine"
	EngineTwoYearSummation     = "TwoYearSummationEngine"
	EngineMonthlyContinuation  = "MonthlyContinuationEngine"
	EngineSelfReported         = "SelfReportedEngine"

	// DefaultEngineA and DefaultEngineB are used when no preference is
	// configured for a person.
	DefaultEngineA = EngineInYearExtrapolation
	DefaultEngineB = EngineSelfReported
)

// IncomeTypeUnhandledError reports a request for an (engine, income type)
// pair outside the engine's declared valid set. This is a programming error
// on the caller's side, never a runtime data condition.
type IncomeTypeUnhandledError struct {
	Engine     string
	IncomeType domain.IncomeType
}

func (e *IncomeTypeUnhandledError) Error() string {
	return fmt.Sprintf("income type %s is not handled by engine %s", e.IncomeType, e.Engine)
}

// PersonContext is the read-only snapshot an engine estimates from: the
// trailing income records (up to 24 months, including the current month)
// plus the annually-reported figures that rolling engines cannot see.
type PersonContext struct {
	PersonID string
	Year     int
	Month    int

	// Records holds the person's monthly income data, oldest first. Records
	// after the current month are ignored by every engine.
	Records []domain.MonthlyIncomeData

	// Assessments are the person's tax-assessment records; the most recent
	// one supplies the annual B income.
	Assessments []domain.Assessment

	// AnnualBIncomeFinal is the B income from the latest annual filing,
	// used when no assessment exists.
	AnnualBIncomeFinal decimal.Decimal

	// AnnualUIncome is the dividend total from the separate declaration
	// aggregate.
	AnnualUIncome decimal.Decimal
}

// CurrentYearMonth returns the month the estimate is being computed for.
func (c *PersonContext) CurrentYearMonth() domain.YearMonth {
	return domain.YearMonth{Year: c.Year, Month: c.Month}
}

// CurrentRecord returns the income record for the current person-month, or
// nil when none exists.
func (c *PersonContext) CurrentRecord() *domain.MonthlyIncomeData {
	for i := range c.Records {
		if c.Records[i].Year == c.Year && c.Records[i].Month == c.Month {
			return &c.Records[i]
		}
	}
	return nil
}

// recordsInWindow returns the records with from <= year-month <= to.
func (c *PersonContext) recordsInWindow(from, to domain.YearMonth) []domain.MonthlyIncomeData {
	var out []domain.MonthlyIncomeData
	for _, r := range c.Records {
		ym := r.YearMonth()
		if !ym.Before(from) && !ym.After(to) {
			out = append(out, r)
		}
	}
	return out
}

// recordsThisYearThrough returns this calendar year's records up to and
// including the current month.
func (c *PersonContext) recordsThisYearThrough() []domain.MonthlyIncomeData {
	return c.recordsInWindow(domain.YearMonth{Year: c.Year, Month: 1}, c.CurrentYearMonth())
}

func subsetSum(records []domain.MonthlyIncomeData, t domain.IncomeType) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount(t))
	}
	return sum
}

// EstimationEngine produces an annual-income estimate for one income type
// from a window of monthly records. Implementations are total functions for
// their valid income types: missing data yields zero, never an error.
type EstimationEngine interface {
	Name() string
	Description() string
	ValidIncomeTypes() []domain.IncomeType
	Estimate(ctx *PersonContext, incomeType domain.IncomeType) (decimal.Decimal, error)
}

func validFor(engine EstimationEngine, t domain.IncomeType) error {
	for _, valid := range engine.ValidIncomeTypes() {
		if valid == t {
			return nil
		}
	}
	return &IncomeTypeUnhandledError{Engine: engine.Name(), IncomeType: t}
}

var (
	twelve   = decimal.NewFromInt(12)
	thirteen = decimal.NewFromInt(13)
)

// InYearExtrapolationEngine extrapolates the current calendar year's income
// to a full year. Months before the first nonzero month determine only
// whether any income exists at all; a person with no income this year
// estimates to zero.
type InYearExtrapolationEngine struct{}

func (InYearExtrapolationEngine) Name() string { return EngineInYearExtrapolation }
func (InYearExtrapolationEngine) Description() string {
	return "Extrapolation of amounts reported in the current year"
}
func (InYearExtrapolationEngine) ValidIncomeTypes() []domain.IncomeType {
	return []domain.IncomeType{domain.IncomeTypeA}
}

func (e InYearExtrapolationEngine) Estimate(ctx *PersonContext, t domain.IncomeType) (decimal.Decimal, error) {
	if err := validFor(e, t); err != nil {
		return decimal.Zero, err
	}
	items := ctx.recordsThisYearThrough()
	firstNonzero := 0
	for _, r := range items {
		if !r.Amount(t).IsZero() {
			firstNonzero = r.Month
			break
		}
	}
	if firstNonzero == 0 {
		return decimal.Zero, nil
	}
	sum := decimal.Zero
	for _, r := range items {
		if r.Month >= firstNonzero {
			sum = sum.Add(r.Amount(t))
		}
	}
	return twelve.Mul(sum).DivRound(decimal.NewFromInt(int64(ctx.Month)), 2), nil
}

// TwelveMonthsSummationEngine sums the trailing 12 months ending with the
// current month. Before a person has 12 months of history it sums what is
// available without extrapolating. Strong on stable incomes and incomes
// repeating the same yearly pattern; weak on outlier months.
type TwelveMonthsSummationEngine struct{}

func (TwelveMonthsSummationEngine) Name() string { return EngineTwelveMonthSummation }
func (TwelveMonthsSummationEngine) Description() string {
	return "Summation of amounts for the trailing 12 months"
}
func (TwelveMonthsSummationEngine) ValidIncomeTypes() []domain.IncomeType {
	return []domain.IncomeType{domain.IncomeTypeA}
}

func (e TwelveMonthsSummationEngine) Estimate(ctx *PersonContext, t domain.IncomeType) (decimal.Decimal, error) {
	if err := validFor(e, t); err != nil {
		return decimal.Zero, err
	}
	current := ctx.CurrentYearMonth()
	window := ctx.recordsInWindow(current.AddMonths(-11), current)
	return subsetSum(window, t), nil
}

// TwoYearSummationEngine averages the trailing 24 months into an annual
// figure. In December it instead behaves exactly like
// TwelveMonthsSummationEngine, summing the trailing 12 months unscaled.
type TwoYearSummationEngine struct{}

func (TwoYearSummationEngine) Name() string { return EngineTwoYearSummation }
func (TwoYearSummationEngine) Description() string {
	return "Summation of amounts for the trailing 24 months, halved"
}
func (TwoYearSummationEngine) ValidIncomeTypes() []domain.IncomeType {
	return []domain.IncomeType{domain.IncomeTypeA}
}

func (e TwoYearSummationEngine) Estimate(ctx *PersonContext, t domain.IncomeType) (decimal.Decimal, error) {
	if err := validFor(e, t); err != nil {
		return decimal.Zero, err
	}
	current := ctx.CurrentYearMonth()
	if ctx.Month == 12 {
		return subsetSum(ctx.recordsInWindow(current.AddMonths(-11), current), t), nil
	}
	window := ctx.recordsInWindow(current.AddMonths(-23), current)
	return subsetSum(window, t).DivRound(decimal.NewFromInt(2), 2), nil
}

// MonthlyContinuationEngine assumes the current month's income repeats for
// every remaining month of the year and adds it to what has already been
// reported.
type MonthlyContinuationEngine struct{}

func (MonthlyContinuationEngine) Name() string { return EngineMonthlyContinuation }
func (MonthlyContinuationEngine) Description() string {
	return "Continuation of the current month's amount through year end"
}
func (MonthlyContinuationEngine) ValidIncomeTypes() []domain.IncomeType {
	return []domain.IncomeType{domain.IncomeTypeA}
}

func (e MonthlyContinuationEngine) Estimate(ctx *PersonContext, t domain.IncomeType) (decimal.Decimal, error) {
	if err := validFor(e, t); err != nil {
		return decimal.Zero, err
	}
	sumPrior := decimal.Zero
	sumCurrent := decimal.Zero
	for _, r := range ctx.recordsThisYearThrough() {
		switch {
		case r.Month < ctx.Month:
			sumPrior = sumPrior.Add(r.Amount(t))
		case r.Month == ctx.Month:
			sumCurrent = sumCurrent.Add(r.Amount(t))
		}
	}
	remaining := thirteen.Sub(decimal.NewFromInt(int64(ctx.Month)))
	return sumPrior.Add(remaining.Mul(sumCurrent)), nil
}

// SelfReportedEngine covers the income types that are only known annually:
// B income from the most recent tax assessment (or the latest annual filing
// when no assessment exists) and U income from the declaration aggregate.
type SelfReportedEngine struct{}

func (SelfReportedEngine) Name() string { return EngineSelfReported }
func (SelfReportedEngine) Description() string {
	return "Annual figure from the tax assessment or declaration"
}
func (SelfReportedEngine) ValidIncomeTypes() []domain.IncomeType {
	return []domain.IncomeType{domain.IncomeTypeB, domain.IncomeTypeU}
}

func (e SelfReportedEngine) Estimate(ctx *PersonContext, t domain.IncomeType) (decimal.Decimal, error) {
	if err := validFor(e, t); err != nil {
		return decimal.Zero, err
	}
	if t == domain.IncomeTypeU {
		return decimal.Max(ctx.AnnualUIncome, decimal.Zero), nil
	}
	if assessment := domain.LatestAssessment(ctx.Assessments); assessment != nil {
		return assessment.AnnualBIncome(), nil
	}
	return decimal.Max(ctx.AnnualBIncomeFinal, decimal.Zero), nil
}

// AllocateMonthly spreads an annual figure evenly across the 12 months of a
// year. The first 11 months receive the amount rounded down to two decimals;
// December absorbs the rounding remainder so the shares sum exactly to the
// annual figure.
func AllocateMonthly(annual decimal.Decimal) [12]decimal.Decimal {
	var shares [12]decimal.Decimal
	base := annual.Div(twelve).RoundDown(2)
	total := decimal.Zero
	for m := 0; m < 11; m++ {
		shares[m] = base
		total = total.Add(base)
	}
	shares[11] = annual.Sub(total)
	return shares
}

// EngineRegistry maps engine names to implementations. It is built
// explicitly at startup; there is no reflective discovery.
type EngineRegistry struct {
	order   []string
	engines map[string]EstimationEngine
}

// NewEngineRegistry returns a registry holding every known engine.
func NewEngineRegistry() *EngineRegistry {
	r := &EngineRegistry{engines: make(map[string]EstimationEngine)}
	for _, e := range []EstimationEngine{
		InYearExtrapolationEngine{},
		TwelveMonthsSummationEngine{},
		TwoYearSummationEngine{},
		MonthlyContinuationEngine{},
		SelfReportedEngine{},
	} {
		r.order = append(r.order, e.Name())
		r.engines[e.Name()] = e
	}
	return r
}

// Get returns the engine registered under name.
func (r *EngineRegistry) Get(name string) (EstimationEngine, error) {
	engine, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown estimation engine %q", name)
	}
	return engine, nil
}

// All returns every registered engine in registration order.
func (r *EngineRegistry) All() []EstimationEngine {
	out := make([]EstimationEngine, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.engines[name])
	}
	return out
}

// ValidForIncomeType returns the engines declaring the given income type.
func (r *EngineRegistry) ValidForIncomeType(t domain.IncomeType) []EstimationEngine {
	var out []EstimationEngine
	for _, engine := range r.All() {
		if validFor(engine, t) == nil {
			out = append(out, engine)
		}
	}
	return out
}
