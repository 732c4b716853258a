package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// View renders the current screen (required by tea.Model interface)
func (m Model) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	}
	if m.loading {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Suila-tapit — %d", m.result.Year)))
	b.WriteString("\n")

	switch m.currentView {
	case viewSchedule:
		person := m.currentPerson()
		if person == nil {
			return "No persons in input file.\n"
		}
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Person %s (%d/%d)",
			person.PersonID, m.personIdx+1, len(m.result.Persons))))
		b.WriteString("\n")
		if person.Verdict.InQuarantine {
			b.WriteString(QuarantineStyle.Render("In quarantine: " + person.Verdict.Reason))
			b.WriteString("\n")
		}
		b.WriteString(TableBorderStyle.Render(m.table.View()))
		b.WriteString("\n")

		total := decimal.Zero
		for _, p := range person.Payouts {
			total = total.Add(decimal.NewFromInt(p.BenefitCalculated))
		}
		b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Total paid: %s kr.", total.StringFixed(2))))

	case viewCurve:
		b.WriteString(SubtitleStyle.Render("Benefit curve breakpoints"))
		b.WriteString("\n")
		b.WriteString(TableBorderStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(StatusBarStyle.Render("←/→ person · tab curve/schedule · ↑/↓ scroll · q quit"))
	b.WriteString("\n")
	return b.String()
}
