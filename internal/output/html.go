package output

import (
	"bytes"
	_ "embed"
	"html/template"
	"time"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/shopspring/decimal"
)

// HTMLFormatter produces a standalone HTML report of the payout schedule.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"curr":    FormatCurrency,
	"pct":     FormatPercentage,
	"benefit": func(v int64) string { return FormatCurrency(decimal.NewFromInt(v)) },
	"payoutDate": func(year, month int) string {
		return calculation.PayoutDate(year, month).Format("2006-01-02")
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(result *calculation.RunResult) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*calculation.RunResult
		Points    []calculation.CurvePoint
		Generated string
	}{result, result.Curve.GraphPoints(), time.Now().Format("2006-01-02 15:04")}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
