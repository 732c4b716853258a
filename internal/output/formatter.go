package output

import (
	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/shopspring/decimal"
)

// Formatter renders a calculation run into one output format.
type Formatter interface {
	Name() string
	Format(result *calculation.RunResult) ([]byte, error)
}

// AvailableFormatters lists every registered formatter.
func AvailableFormatters() []Formatter {
	return []Formatter{
		ConsoleFormatter{},
		CSVFormatter{},
		JSONFormatter{},
		HTMLFormatter{},
	}
}

// GetFormatterByName returns the formatter registered under the given name,
// or nil when no such formatter exists.
func GetFormatterByName(name string) Formatter {
	for _, f := range AvailableFormatters() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// FormatterNames returns the registered formatter names in registry order.
func FormatterNames() []string {
	formatters := AvailableFormatters()
	names := make([]string, len(formatters))
	for i, f := range formatters {
		names[i] = f.Name()
	}
	return names
}

// FormatCurrency formats a decimal amount as kroner
func FormatCurrency(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " kr."
}

// FormatPercentage formats a decimal as percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}
