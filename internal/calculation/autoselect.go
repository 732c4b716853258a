package calculation

import (
	"fmt"

	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// EnginePreference names the chosen estimation engine per income type.
type EnginePreference struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SelectBestEngines evaluates every valid (A-engine, B-engine) pair over a
// completed prior year and returns the pair whose mean monthly estimated
// year benefit came closest to the realized year benefit. Ties and years
// that cannot be evaluated fall back to the configured defaults.
//
// MonthlyContinuationEngine is excluded: repeating a single month is too
// noisy to backtest fairly against full-year outcomes.
func (c *MonthlyBenefitCalculator) SelectBestEngines(in PersonYearInput) (EnginePreference, error) {
	preference := EnginePreference{A: c.Settings.EngineA, B: c.Settings.EngineB}

	actual := in.actualYearResult()
	if actual.IsZero() {
		return preference, nil
	}
	actualBenefit := c.Curve.Calculate(actual)

	var aEngines []EstimationEngine
	for _, e := range c.Engines.ValidForIncomeType(domain.IncomeTypeA) {
		if e.Name() == EngineMonthlyContinuation {
			continue
		}
		aEngines = append(aEngines, e)
	}
	bEngines := c.Engines.ValidForIncomeType(domain.IncomeTypeB)

	var (
		bestError decimal.Decimal
		bestCount int
	)
	for _, engineA := range aEngines {
		for _, engineB := range bEngines {
			trial := in
			trial.EngineA = engineA.Name()
			trial.EngineB = engineB.Name()
			payouts, err := c.RunYear(trial)
			if err != nil {
				return preference, fmt.Errorf("backtesting %s/%s: %w", engineA.Name(), engineB.Name(), err)
			}

			estimates := make([]decimal.Decimal, 0, len(payouts))
			for _, p := range payouts {
				estimates = append(estimates, p.EstimatedYearBenefit)
			}
			payoutError := decimal.Avg(estimates[0], estimates[1:]...).Sub(actualBenefit).Abs()

			switch {
			case bestCount == 0 || payoutError.LessThan(bestError):
				bestError = payoutError
				bestCount = 1
				preference = EnginePreference{A: engineA.Name(), B: engineB.Name()}
			case payoutError.Equal(bestError):
				bestCount++
			}
		}
	}

	// A tie means no engine pair is demonstrably best; keep the defaults.
	if bestCount != 1 {
		return EnginePreference{A: c.Settings.EngineA, B: c.Settings.EngineB}, nil
	}
	return preference, nil
}
