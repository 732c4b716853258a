package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/magenta-aps/suila-engine/internal/calculation"
)

// CSVFormatter implements the flat payout export (one row per person-month).
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *calculation.RunResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"PersonID", "Year", "Month", "PayoutDate", "Benefit",
		"PriorBenefitTransferred", "RemainingBenefitForYear",
		"EstimatedYearResult", "EstimatedYearBenefit", "ActualYearBenefit",
		"InQuarantine",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, person := range result.Persons {
		for _, payout := range person.Payouts {
			actual := ""
			if payout.ActualYearBenefit != nil {
				actual = payout.ActualYearBenefit.StringFixed(2)
			}
			row := []string{
				payout.PersonID,
				strconv.Itoa(payout.Year),
				strconv.Itoa(payout.Month),
				calculation.PayoutDate(payout.Year, payout.Month).Format("2006-01-02"),
				strconv.FormatInt(payout.BenefitCalculated, 10),
				payout.PriorBenefitTransferred.StringFixed(2),
				payout.RemainingBenefitForYear.StringFixed(2),
				payout.EstimatedYearResult.StringFixed(2),
				payout.EstimatedYearBenefit.StringFixed(2),
				actual,
				strconv.FormatBool(person.Verdict.InQuarantine),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
