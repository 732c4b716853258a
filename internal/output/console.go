package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
)

func lastPayout(payouts []domain.MonthlyPayout) *domain.MonthlyPayout {
	if len(payouts) == 0 {
		return nil
	}
	return &payouts[len(payouts)-1]
}

// ConsoleFormatter renders the per-person monthly payout schedule as a
// human-readable text report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *calculation.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	title := fmt.Sprintf("SUILA-TAPIT BENEFIT CALCULATION — %d", result.Year)
	fmt.Fprintln(&buf, strings.Repeat("=", len(title)))
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", len(title)))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "BENEFIT CURVE:")
	fmt.Fprintf(&buf, "  Rate: %s  Allowance: %s  Max: %s  Scaledown: %s above %s\n",
		FormatPercentage(result.Curve.BenefitRatePercent),
		FormatCurrency(result.Curve.Allowance()),
		FormatCurrency(result.Curve.MaxBenefit),
		FormatPercentage(result.Curve.ScaledownRatePercent),
		FormatCurrency(result.Curve.ScaledownCeiling))
	for _, point := range result.Curve.GraphPoints() {
		fmt.Fprintf(&buf, "  %15s  ->  %s\n", point.Income.StringFixed(2), FormatCurrency(point.Benefit))
	}
	fmt.Fprintln(&buf)

	for _, person := range result.Persons {
		header := fmt.Sprintf("PERSON %s", person.PersonID)
		fmt.Fprintln(&buf, header)
		fmt.Fprintln(&buf, strings.Repeat("-", len(header)))
		if person.Verdict.InQuarantine {
			fmt.Fprintf(&buf, "  IN QUARANTINE: %s\n", person.Verdict.Reason)
		}
		fmt.Fprintf(&buf, "  %-5s %-12s %18s %18s %14s %14s\n",
			"MONTH", "PAYOUT DATE", "ESTIMATED INCOME", "ESTIMATED BENEFIT", "REMAINING", "BENEFIT")

		total := decimal.Zero
		for _, payout := range person.Payouts {
			date := calculation.PayoutDate(payout.Year, payout.Month)
			benefit := decimal.NewFromInt(payout.BenefitCalculated)
			total = total.Add(benefit)
			fmt.Fprintf(&buf, "  %-5d %-12s %18s %18s %14s %14s\n",
				payout.Month,
				date.Format("2006-01-02"),
				payout.EstimatedYearResult.StringFixed(2),
				payout.EstimatedYearBenefit.StringFixed(2),
				payout.RemainingBenefitForYear.StringFixed(2),
				FormatCurrency(benefit))
		}
		fmt.Fprintf(&buf, "  TOTAL PAID: %s\n", FormatCurrency(total))

		if last := lastPayout(person.Payouts); last != nil && last.ActualYearBenefit != nil {
			fmt.Fprintf(&buf, "  ACTUAL YEAR BENEFIT: %s\n", FormatCurrency(*last.ActualYearBenefit))
			difference := total.Sub(*last.ActualYearBenefit)
			switch {
			case difference.IsPositive():
				fmt.Fprintf(&buf, "  OVERPAID: %s\n", FormatCurrency(difference))
			case difference.IsNegative():
				fmt.Fprintf(&buf, "  UNDERPAID: %s\n", FormatCurrency(difference.Neg()))
			}
		}
		fmt.Fprintln(&buf)
	}

	return buf.Bytes(), nil
}
