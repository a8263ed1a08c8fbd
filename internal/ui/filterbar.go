package ui

import (
	"github.com/five82/todoview/internal/todo"
)

// renderFilterBar renders the search input and the status selector.
func (m Model) renderFilterBar() string {
	styles := m.theme.StylesOn(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	options := make([]string, 0, len(todo.Statuses()))
	for _, s := range todo.Statuses() {
		label := " " + statusLabel(s) + " "
		if s == m.snapshot.Filter.Status {
			options = append(options, styles.Selected.Bold(true).Render(label))
			continue
		}
		options = append(options, bg.Render(label, styles.MutedText))
	}

	return styles.Header.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(
		m.filterInput.View() + bg.Spaces(3) +
			bg.Render("Status", styles.FaintText) + bg.Space() +
			bg.Join(options, " "))
}
