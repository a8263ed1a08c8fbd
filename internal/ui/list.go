package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/todoview/internal/todo"
)

const (
	eyeOpen   = "◉"
	eyeClosed = "○"
	checkMark = "✓"
)

// renderContent renders the todo list, split with the detail pane when a todo
// is selected.
func (m Model) renderContent(height int) string {
	if !m.snapshot.HasSelected {
		listContent := m.renderList(m.width-2, height-2, m.theme.FocusBg)
		return m.renderTitledBox(m.listTitle(), listContent, m.width, height, true)
	}

	// Extra wide (>= 160): 40% list, 60% detail
	// Default: 50/50
	var listWidth int
	if m.width >= LayoutExtraWideWidth {
		listWidth = m.width * 40 / 100
	} else {
		listWidth = m.width / 2
	}
	detailWidth := m.width - listWidth

	listPane := m.renderTitledBox(m.listTitle(),
		m.renderList(listWidth-2, height-2, m.theme.SurfaceAlt), listWidth, height, false)
	detailPane := m.renderTitledBox(fmt.Sprintf("Todo #%d", m.snapshot.Selected.ID),
		m.renderDetail(detailWidth-2, m.theme.FocusBg), detailWidth, height, true)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m Model) listTitle() string {
	title := fmt.Sprintf("Todos (%d)", len(m.snapshot.Todos))
	if q := m.snapshot.Filter.Query; q != "" {
		title += fmt.Sprintf(" /%s", truncate(q, 20))
	}
	if m.snapshot.Filter.Status != todo.StatusAll {
		title += " · " + statusLabel(m.snapshot.Filter.Status)
	}
	return title
}

// renderList renders the loader line and as many rows as fit, scrolled so the
// cursor stays visible.
func (m Model) renderList(width, rows int, bgColor string) string {
	styles := m.theme.StylesOn(bgColor)
	bg := NewBgStyle(bgColor)

	var lines []string
	if m.snapshot.Loading {
		lines = append(lines, m.spinner.View()+bg.Space()+bg.Render("Loading todos...", styles.WarningText))
	}

	todos := m.snapshot.Todos
	if len(todos) == 0 {
		if !m.snapshot.Loading {
			lines = append(lines, bg.Render("No todos", styles.MutedText))
		}
		return strings.Join(lines, "\n")
	}

	visible := max(rows-len(lines), 1)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(todos))

	for i := start; i < end; i++ {
		lines = append(lines, m.formatRow(todos[i], width, i == m.cursor, bgColor))
	}
	return strings.Join(lines, "\n")
}

// formatRow formats one todo as "#ID ✓ Title ... ◉".
// The cursor row uses SelectionText for every part to keep contrast.
func (m Model) formatRow(t todo.Todo, width int, cursor bool, bgColor string) string {
	if cursor {
		bgColor = m.theme.SelectionBg
	}
	bg := NewBgStyle(bgColor)

	idStr := fmt.Sprintf("#%-4d", t.ID)
	check := ternary(t.Completed, checkMark, " ")
	eye := ternary(m.isShown(t.ID), eyeOpen, eyeClosed)

	// id, space, check, space, title, space, eye
	titleWidth := max(width-len([]rune(idStr))-5, 4)
	title := padRight(truncate(t.Title, titleWidth), titleWidth)

	st := m.theme.Styles()
	idStyle, titleStyle, checkStyle, markStyle := st.MutedText, st.TitleStyle(t.Completed), st.SuccessText, st.AccentText
	if cursor {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		idStyle, titleStyle, checkStyle, markStyle = selText, selText.Bold(true), selText, selText
	}

	row := bg.Render(idStr, idStyle) + bg.Space() +
		bg.Render(check, checkStyle) + bg.Space() +
		bg.Render(title, titleStyle) + bg.Space() +
		bg.Render(eye, markStyle)
	return bg.FillLine(row, width)
}

func (m Model) isShown(id int) bool {
	return m.snapshot.HasSelected && m.snapshot.Selected.ID == id
}

func statusLabel(s todo.Status) string {
	switch s {
	case todo.StatusActive:
		return "Active"
	case todo.StatusCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. Focused boxes use BorderFocus and FocusBg.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	bgColor := lipgloss.Color(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bgColor)

	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}
