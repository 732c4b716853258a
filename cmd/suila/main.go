package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/magenta-aps/suila-engine/internal/config"
	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/magenta-aps/suila-engine/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "suila %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "suila",
	Short: "Suila-tapit benefit calculator CLI",
	Long:  "Monthly income-support benefit calculation from reported income data",
}

// newCalculator builds a calculator from a loaded configuration, honoring the
// --debug flag.
func newCalculator(cmd *cobra.Command, configData *config.Configuration) (*calculation.MonthlyBenefitCalculator, error) {
	calc, err := calculation.NewMonthlyBenefitCalculator(configData.Curve, configData.Calculation)
	if err != nil {
		return nil, err
	}
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		calc.SetLogger(simpleCLILogger{})
	}
	return calc, nil
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Calculate monthly benefits for every person in the input file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		calc, err := newCalculator(cmd, configData)
		if err != nil {
			log.Fatal(err)
		}

		month, _ := cmd.Flags().GetInt("month")
		if month != 0 && (month < 1 || month > 12) {
			log.Fatalf("month must be between 1 and 12, got %d", month)
		}

		result := calculation.RunResult{Year: configData.Year, Curve: configData.Curve}
		detector := calculation.NewQuarantineDetector(configData.Curve, configData.Calculation.Quarantine)
		for _, person := range configData.Persons {
			in := person.YearInput(configData.Year)
			payouts, err := calc.RunYear(in)
			if err != nil {
				log.Fatalf("person %s: %v", person.PersonID, err)
			}
			if month != 0 {
				payouts = payouts[month-1 : month]
			}
			result.Persons = append(result.Persons, calculation.PersonResult{
				PersonID: person.PersonID,
				Verdict:  detector.Evaluate(person.PersonID, configData.Year, in.PriorYear),
				Payouts:  payouts,
			})
		}

		outputFormat, _ := cmd.Flags().GetString("format")
		f := output.GetFormatterByName(outputFormat)
		if f == nil {
			log.Fatalf("unsupported format: %s (valid: %v)", outputFormat, output.FormatterNames())
		}
		data, err := f.Format(&result)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(string(data))
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate [input-file]",
	Short: "Print per-engine annual income estimates for every person",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		calc, err := newCalculator(cmd, configData)
		if err != nil {
			log.Fatal(err)
		}

		month, _ := cmd.Flags().GetInt("month")
		if month < 1 || month > 12 {
			log.Fatalf("month must be between 1 and 12, got %d", month)
		}

		for _, person := range configData.Persons {
			in := person.YearInput(configData.Year)
			ctx := contextThrough(in, month)

			fmt.Printf("PERSON %s — estimates as of %d-%02d\n", person.PersonID, configData.Year, month)
			monthly := make([]decimal.Decimal, 0, 12)
			for _, r := range ctx.Records {
				if r.Year == configData.Year {
					monthly = append(monthly, r.AIncome.Add(r.BIncome))
				}
			}
			fmt.Printf("  Income stability score: %s\n", calculation.StabilityScore(monthly))

			for _, incomeType := range domain.IncomeTypes {
				for _, engine := range calc.Engines.ValidForIncomeType(incomeType) {
					estimate, err := calc.EstimateAnnualIncome(ctx, incomeType, engine.Name())
					if err != nil {
						log.Fatalf("person %s: %v", person.PersonID, err)
					}
					fmt.Printf("  %-28s %s: %s\n", engine.Name(), incomeType,
						output.FormatCurrency(estimate.EstimatedYearResult))
				}
			}
			fmt.Println()
		}
	},
}

// contextThrough builds the record window a given month's estimation sees.
func contextThrough(in calculation.PersonYearInput, month int) *calculation.PersonContext {
	current := domain.YearMonth{Year: in.Year, Month: month}
	var visible []domain.MonthlyIncomeData
	for _, r := range in.Records {
		if !r.YearMonth().After(current) {
			visible = append(visible, r)
		}
	}
	return &calculation.PersonContext{
		PersonID:           in.PersonID,
		Year:               in.Year,
		Month:              month,
		Records:            visible,
		Assessments:        in.Assessments,
		AnnualBIncomeFinal: in.AnnualBIncomeFinal,
		AnnualUIncome:      in.AnnualUIncome,
	}
}

var curveCmd = &cobra.Command{
	Use:   "curve [input-file]",
	Short: "Print the benefit curve breakpoints and sampled values",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		curve := configData.Curve

		fmt.Println("BENEFIT CURVE BREAKPOINTS")
		fmt.Println("=========================")
		points := curve.GraphPoints()
		for _, p := range points {
			fmt.Printf("  %15s  ->  %s\n", p.Income.StringFixed(2), output.FormatCurrency(p.Benefit))
		}

		if len(points) < 2 {
			return
		}
		fmt.Println()
		fmt.Println("SAMPLED VALUES")
		fmt.Println("==============")
		last := points[len(points)-1].Income
		step := last.Div(decimal.NewFromInt(20)).Ceil()
		for x := decimal.Zero; x.LessThanOrEqual(last); x = x.Add(step) {
			fmt.Printf("  %15s  ->  %s\n", x.StringFixed(2), output.FormatCurrency(curve.Calculate(x)))
		}
	},
}

var autoselectCmd = &cobra.Command{
	Use:   "autoselect [input-file]",
	Short: "Report the best estimation engine pair per person",
	Long: `Backtest every valid engine pair against a completed year and report
the pair whose estimates came closest to the realized benefit. The input file
must contain the completed year's income records.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		calc, err := newCalculator(cmd, configData)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("%-12s %-30s %s\n", "PERSON", "A ENGINE", "B ENGINE")
		for _, person := range configData.Persons {
			preference, err := calc.SelectBestEngines(person.YearInput(configData.Year))
			if err != nil {
				log.Fatalf("person %s: %v", person.PersonID, err)
			}
			fmt.Printf("%-12s %-30s %s\n", person.PersonID, preference.A, preference.B)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		_, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Configuration file %s is valid\n", inputFile)
	},
}

func init() {
	calculateCmd.Flags().StringP("format", "f", "console", "Output format (console, csv, json, html)")
	calculateCmd.Flags().IntP("month", "m", 0, "Calculate a single month instead of the full year")
	calculateCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	estimateCmd.Flags().IntP("month", "m", 12, "Month the estimates are computed as of")
	estimateCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	autoselectCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(curveCmd)
	rootCmd.AddCommand(autoselectCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
