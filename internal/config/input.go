package config

import (
	"fmt"
	"os"
	"time"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/magenta-aps/suila-engine/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Configuration is the root of an input file: the calculation year, the
// statutory curve, the policy settings and the persons to calculate.
type Configuration struct {
	Year        int                                `yaml:"year" json:"year"`
	Curve       calculation.BenefitCurveParameters `yaml:"curve" json:"curve"`
	Calculation calculation.CalculationSettings    `yaml:"calculation" json:"calculation"`
	Persons     []PersonConfig                     `yaml:"persons" json:"persons"`
}

// IncomeRecordConfig is one reported person-month. HasSignal defaults to
// true: a record that exists was reported.
type IncomeRecordConfig struct {
	Year      int             `yaml:"year" json:"year"`
	Month     int             `yaml:"month" json:"month"`
	AIncome   decimal.Decimal `yaml:"a_income" json:"a_income"`
	BIncome   decimal.Decimal `yaml:"b_income" json:"b_income"`
	UIncome   decimal.Decimal `yaml:"u_income" json:"u_income"`
	HasSignal *bool           `yaml:"has_signal,omitempty" json:"has_signal,omitempty"`
}

// AssessmentConfig is one self-reported tax assessment.
type AssessmentConfig struct {
	Created        time.Time       `yaml:"created" json:"created"`
	GrossBIncome   decimal.Decimal `yaml:"gross_b_income" json:"gross_b_income"`
	BusinessIncome decimal.Decimal `yaml:"business_income" json:"business_income"`
}

// DecemberOutcomeConfig carries the committed December figures of the prior
// year, needed by the wrong-payout quarantine check.
type DecemberOutcomeConfig struct {
	BenefitTransferred      decimal.Decimal `yaml:"benefit_transferred" json:"benefit_transferred"`
	PriorBenefitTransferred decimal.Decimal `yaml:"prior_benefit_transferred" json:"prior_benefit_transferred"`
	ActualYearBenefit       decimal.Decimal `yaml:"actual_year_benefit" json:"actual_year_benefit"`
}

// PriorYearConfig is the prior-year history feeding the quarantine detector.
type PriorYearConfig struct {
	Records  []IncomeRecordConfig   `yaml:"records" json:"records"`
	December *DecemberOutcomeConfig `yaml:"december,omitempty" json:"december,omitempty"`
}

// PersonConfig is one person's complete input for the calculation year.
type PersonConfig struct {
	PersonID string `yaml:"person_id" json:"person_id"`

	Records     []IncomeRecordConfig `yaml:"records" json:"records"`
	Assessments []AssessmentConfig   `yaml:"assessments,omitempty" json:"assessments,omitempty"`

	AnnualBIncomeFinal decimal.Decimal  `yaml:"annual_b_income_final" json:"annual_b_income_final"`
	AnnualUIncome      decimal.Decimal  `yaml:"annual_u_income" json:"annual_u_income"`
	BExpenses          decimal.Decimal  `yaml:"b_expenses" json:"b_expenses"`
	CatchsaleExpenses  decimal.Decimal  `yaml:"catchsale_expenses" json:"catchsale_expenses"`
	ManualAnnualIncome *decimal.Decimal `yaml:"manual_annual_income,omitempty" json:"manual_annual_income,omitempty"`
	Paused             bool             `yaml:"paused" json:"paused"`

	PriorDecemberBenefit decimal.Decimal  `yaml:"prior_december_benefit" json:"prior_december_benefit"`
	PriorYear            *PriorYearConfig `yaml:"prior_year,omitempty" json:"prior_year,omitempty"`

	// EngineA and EngineB override the configured default engines for this
	// person only.
	EngineA string `yaml:"engine_a,omitempty" json:"engine_a,omitempty"`
	EngineB string `yaml:"engine_b,omitempty" json:"engine_b,omitempty"`
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML file. Settings not present in
// the file keep their production defaults.
func (ip *InputParser) LoadFromFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config := Configuration{
		Calculation: calculation.DefaultCalculationSettings(),
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *Configuration) error {
	if config.Year <= 0 {
		return fmt.Errorf("year is required")
	}
	if err := config.Curve.Validate(); err != nil {
		return fmt.Errorf("curve validation failed: %w", err)
	}
	if err := config.Calculation.Validate(calculation.NewEngineRegistry()); err != nil {
		return fmt.Errorf("calculation settings validation failed: %w", err)
	}

	if len(config.Persons) == 0 {
		return fmt.Errorf("no persons provided")
	}
	seen := make(map[string]bool, len(config.Persons))
	for i, person := range config.Persons {
		if err := ip.validatePerson(config, &person); err != nil {
			return fmt.Errorf("person %d (%s) validation failed: %w", i, person.PersonID, err)
		}
		if seen[person.PersonID] {
			return fmt.Errorf("duplicate person id: %s", person.PersonID)
		}
		seen[person.PersonID] = true
	}

	return nil
}

// validatePerson validates a single person's input
func (ip *InputParser) validatePerson(config *Configuration, person *PersonConfig) error {
	if person.PersonID == "" {
		return fmt.Errorf("person id is required")
	}

	for i, record := range person.Records {
		if err := ip.validateRecord(&record); err != nil {
			return fmt.Errorf("record %d validation failed: %w", i, err)
		}
		if record.Year > config.Year {
			return fmt.Errorf("record %d is dated after the calculation year", i)
		}
	}

	if person.PriorYear != nil {
		for i, record := range person.PriorYear.Records {
			if err := ip.validateRecord(&record); err != nil {
				return fmt.Errorf("prior-year record %d validation failed: %w", i, err)
			}
			if record.Year != config.Year-1 {
				return fmt.Errorf("prior-year record %d is not dated in %d", i, config.Year-1)
			}
		}
	}

	if person.ManualAnnualIncome != nil && person.ManualAnnualIncome.IsNegative() {
		return fmt.Errorf("manual annual income cannot be negative")
	}
	if person.BExpenses.IsNegative() {
		return fmt.Errorf("B expenses cannot be negative")
	}
	if person.CatchsaleExpenses.IsNegative() {
		return fmt.Errorf("catch-sale expenses cannot be negative")
	}
	if person.PriorDecemberBenefit.IsNegative() {
		return fmt.Errorf("prior December benefit cannot be negative")
	}

	registry := calculation.NewEngineRegistry()
	for _, pair := range []struct {
		name       string
		incomeType domain.IncomeType
	}{
		{person.EngineA, domain.IncomeTypeA},
		{person.EngineB, domain.IncomeTypeB},
	} {
		if pair.name == "" {
			continue
		}
		engine, err := registry.Get(pair.name)
		if err != nil {
			return err
		}
		found := false
		for _, valid := range engine.ValidIncomeTypes() {
			if valid == pair.incomeType {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("engine %s cannot estimate %s income", pair.name, pair.incomeType)
		}
	}

	return nil
}

// validateRecord validates a single income record
func (ip *InputParser) validateRecord(record *IncomeRecordConfig) error {
	if record.Month < 1 || record.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", record.Month)
	}
	if record.Year <= 0 {
		return fmt.Errorf("year is required")
	}
	if record.AIncome.IsNegative() || record.BIncome.IsNegative() || record.UIncome.IsNegative() {
		return fmt.Errorf("income amounts cannot be negative")
	}
	return nil
}

func (r IncomeRecordConfig) toDomain(personID string) domain.MonthlyIncomeData {
	hasSignal := true
	if r.HasSignal != nil {
		hasSignal = *r.HasSignal
	}
	return domain.MonthlyIncomeData{
		PersonID:  personID,
		Year:      r.Year,
		Month:     r.Month,
		AIncome:   r.AIncome,
		BIncome:   r.BIncome,
		UIncome:   r.UIncome,
		HasSignal: hasSignal,
	}
}

// YearInput converts a person's configuration into the calculation input for
// the configured year.
func (p PersonConfig) YearInput(year int) calculation.PersonYearInput {
	records := make([]domain.MonthlyIncomeData, 0, len(p.Records))
	for _, r := range p.Records {
		records = append(records, r.toDomain(p.PersonID))
	}

	assessments := make([]domain.Assessment, 0, len(p.Assessments))
	for _, a := range p.Assessments {
		assessments = append(assessments, domain.Assessment{
			Created:        a.Created,
			GrossBIncome:   a.GrossBIncome,
			BusinessIncome: a.BusinessIncome,
		})
	}

	var prior *calculation.PriorYearOutcome
	if p.PriorYear != nil {
		prior = &calculation.PriorYearOutcome{}
		for _, r := range p.PriorYear.Records {
			prior.Records = append(prior.Records, r.toDomain(p.PersonID))
		}
		if p.PriorYear.December != nil {
			prior.December = &calculation.DecemberOutcome{
				BenefitTransferred:      p.PriorYear.December.BenefitTransferred,
				PriorBenefitTransferred: p.PriorYear.December.PriorBenefitTransferred,
				ActualYearBenefit:       p.PriorYear.December.ActualYearBenefit,
			}
		}
	}

	return calculation.PersonYearInput{
		PersonID:             p.PersonID,
		Year:                 year,
		Records:              records,
		Assessments:          assessments,
		AnnualBIncomeFinal:   p.AnnualBIncomeFinal,
		AnnualUIncome:        p.AnnualUIncome,
		BExpenses:            p.BExpenses,
		CatchsaleExpenses:    p.CatchsaleExpenses,
		ManualAnnualIncome:   p.ManualAnnualIncome,
		Paused:               p.Paused,
		PriorDecemberBenefit: p.PriorDecemberBenefit,
		PriorYear:            prior,
		EngineA:              p.EngineA,
		EngineB:              p.EngineB,
	}
}
