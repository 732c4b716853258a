package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/magenta-aps/suila-engine/internal/calculation"
	"github.com/magenta-aps/suila-engine/internal/config"
)

// view identifies which screen the browser is showing.
type view int

const (
	viewSchedule view = iota
	viewCurve
)

// Model represents the entire application state
type Model struct {
	configPath string

	// Computed run, nil until loaded.
	result *calculation.RunResult

	currentView view
	personIdx   int
	table       table.Model

	width  int
	height int

	err     error
	loading bool
}

// NewModel creates a new application model
func NewModel(configPath string) Model {
	return Model{
		configPath: configPath,
		loading:    true,
		width:      80,
		height:     24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return loadResultCmd(m.configPath)
}

// loadResultCmd parses the input file and computes the full year for every
// person in it.
func loadResultCmd(path string) tea.Cmd {
	return func() tea.Msg {
		parser := config.NewInputParser()
		cfg, err := parser.LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		calc, err := calculation.NewMonthlyBenefitCalculator(cfg.Curve, cfg.Calculation)
		if err != nil {
			return ErrorMsg{Err: err}
		}

		detector := calculation.NewQuarantineDetector(cfg.Curve, cfg.Calculation.Quarantine)
		result := &calculation.RunResult{Year: cfg.Year, Curve: cfg.Curve}
		for _, person := range cfg.Persons {
			in := person.YearInput(cfg.Year)
			payouts, err := calc.RunYear(in)
			if err != nil {
				return ErrorMsg{Err: err}
			}
			result.Persons = append(result.Persons, calculation.PersonResult{
				PersonID: person.PersonID,
				Verdict:  detector.Evaluate(person.PersonID, cfg.Year, in.PriorYear),
				Payouts:  payouts,
			})
		}
		return ResultLoadedMsg{Result: result}
	}
}

func (m Model) currentPerson() *calculation.PersonResult {
	if m.result == nil || len(m.result.Persons) == 0 {
		return nil
	}
	return &m.result.Persons[m.personIdx]
}
