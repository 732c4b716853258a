package output

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRunResult() *calculation.RunResult {
	actual := decimal.NewFromInt(15750)
	return &calculation.RunResult{
		Year: 2025,
		Curve: calculation.BenefitCurveParameters{
			BenefitRatePercent:   decimal.NewFromFloat(17.5),
			PersonalAllowance:    decimal.NewFromInt(58000),
			StandardAllowance:    decimal.NewFromInt(10000),
			MaxBenefit:           decimal.NewFromInt(15750),
			ScaledownRatePercent: decimal.NewFromFloat(6.3),
			ScaledownCeiling:     decimal.NewFromInt(250000),
		},
		Persons: []calculation.PersonResult{
			{
				PersonID: "0101012222",
				Verdict:  domain.QuarantineVerdict{PersonID: "0101012222", Reason: "-"},
				Payouts: []domain.MonthlyPayout{
					{
						PersonID:                "0101012222",
						Year:                    2025,
						Month:                   1,
						BenefitCalculated:       1313,
						PriorBenefitTransferred: decimal.Zero,
						RemainingBenefitForYear: decimal.NewFromInt(14437),
						EstimatedYearResult:     decimal.NewFromInt(240000),
						EstimatedYearBenefit:    decimal.NewFromInt(15750),
					},
					{
						PersonID:                "0101012222",
						Year:                    2025,
						Month:                   12,
						BenefitCalculated:       1307,
						PriorBenefitTransferred: decimal.NewFromInt(14443),
						RemainingBenefitForYear: decimal.Zero,
						EstimatedYearResult:     decimal.NewFromInt(240000),
						EstimatedYearBenefit:    decimal.NewFromInt(15750),
						ActualYearBenefit:       &actual,
					},
				},
			},
		},
	}
}

func TestGetFormatterByName(t *testing.T) {
	for _, name := range []string{"console", "csv", "json", "html"} {
		formatter := GetFormatterByName(name)
		require.NotNil(t, formatter, name)
		assert.Equal(t, name, formatter.Name())
	}
	assert.Nil(t, GetFormatterByName("non-existent"))
	assert.Equal(t, []string{"console", "csv", "json", "html"}, FormatterNames())
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(sampleRunResult())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "SUILA-TAPIT BENEFIT CALCULATION — 2025")
	assert.Contains(t, text, "PERSON 0101012222")
	assert.Contains(t, text, "1313.00 kr.")
	assert.Contains(t, text, "TOTAL PAID: 2620.00 kr.")
	assert.Contains(t, text, "2025-01-21", "january payout lands on the third tuesday")
	assert.NotContains(t, text, "IN QUARANTINE")
}

func TestConsoleFormatterQuarantine(t *testing.T) {
	result := sampleRunResult()
	result.Persons[0].Verdict = domain.QuarantineVerdict{
		PersonID:     "0101012222",
		InQuarantine: true,
		Reason:       "received too much benefit in 2024",
	}
	out, err := ConsoleFormatter{}.Format(result)
	require.NoError(t, err)
	assert.Contains(t, string(out), "IN QUARANTINE: received too much benefit in 2024")
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(sampleRunResult())
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per payout")

	assert.Equal(t, "PersonID", rows[0][0])
	assert.Equal(t, []string{
		"0101012222", "2025", "1", "2025-01-21", "1313",
		"0.00", "14437.00", "240000.00", "15750.00", "", "false",
	}, rows[1])
	assert.Equal(t, "15750.00", rows[2][9], "december carries the actual year benefit")
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(sampleRunResult())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.EqualValues(t, 2025, decoded["year"])

	persons, ok := decoded["persons"].([]any)
	require.True(t, ok)
	require.Len(t, persons, 1)
}

func TestHTMLFormatter(t *testing.T) {
	out, err := HTMLFormatter{}.Format(sampleRunResult())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "<title>Suila-tapit 2025</title>")
	assert.Contains(t, text, "Person 0101012222")
	assert.Contains(t, text, "1313.00 kr.")
}
