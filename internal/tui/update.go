package tui

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/magenta-aps/suila-engine/internal/calculation"
)

// Update handles all incoming messages (required by tea.Model interface)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.loading = false
		return m, nil

	case ResultLoadedMsg:
		m.result = msg.Result
		m.loading = false
		m.rebuildTable()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab", "c":
			if m.currentView == viewSchedule {
				m.currentView = viewCurve
			} else {
				m.currentView = viewSchedule
			}
			m.rebuildTable()
			return m, nil
		case "left", "h":
			if m.result != nil && m.personIdx > 0 {
				m.personIdx--
				m.rebuildTable()
			}
			return m, nil
		case "right", "l":
			if m.result != nil && m.personIdx < len(m.result.Persons)-1 {
				m.personIdx++
				m.rebuildTable()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// rebuildTable repopulates the table for the current view and person.
func (m *Model) rebuildTable() {
	if m.result == nil {
		return
	}

	var columns []table.Column
	var rows []table.Row

	switch m.currentView {
	case viewSchedule:
		columns = []table.Column{
			{Title: "Month", Width: 6},
			{Title: "Payout date", Width: 12},
			{Title: "Est. income", Width: 14},
			{Title: "Est. benefit", Width: 14},
			{Title: "Remaining", Width: 12},
			{Title: "Benefit", Width: 10},
		}
		if person := m.currentPerson(); person != nil {
			for _, p := range person.Payouts {
				rows = append(rows, table.Row{
					monthNames[p.Month-1],
					calculation.PayoutDate(p.Year, p.Month).Format("2006-01-02"),
					p.EstimatedYearResult.StringFixed(2),
					p.EstimatedYearBenefit.StringFixed(2),
					p.RemainingBenefitForYear.StringFixed(2),
					decimal.NewFromInt(p.BenefitCalculated).StringFixed(2),
				})
			}
		}

	case viewCurve:
		columns = []table.Column{
			{Title: "Annual income", Width: 16},
			{Title: "Annual benefit", Width: 16},
		}
		for _, point := range m.result.Curve.GraphPoints() {
			rows = append(rows, table.Row{
				point.Income.StringFixed(2),
				point.Benefit.StringFixed(2),
			})
		}
	}

	height := len(rows)
	if limit := m.height - 8; height > limit && limit > 2 {
		height = limit
	}
	m.table = table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height),
		table.WithFocused(true),
	)
}

var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}
