package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/five82/todoview/internal/todo"
)

const detailLabelWidth = 8

// renderDetail renders the selected todo and, when it has one, its user.
func (m Model) renderDetail(width int, bgColor string) string {
	t := m.snapshot.Selected
	styles := m.theme.StylesOn(bgColor)
	bg := NewBgStyle(bgColor)
	wrapWidth := max(width-2, 10)

	row := func(label, value string, valueStyle func(string) string) string {
		value = truncate(value, max(wrapWidth-detailLabelWidth, 1))
		return bg.Space() + bg.Render(padRight(label, detailLabelWidth), styles.FaintText) + valueStyle(value)
	}
	text := func(s string) string { return bg.Render(s, styles.Text) }
	muted := func(s string) string { return bg.Render(s, styles.MutedText) }

	var lines []string
	for _, l := range strings.Split(wordwrap.String(t.Title, wrapWidth), "\n") {
		lines = append(lines, bg.Space()+bg.Render(l, styles.TitleStyle(t.Completed).Bold(true)))
	}
	lines = append(lines, "")

	status := ternary(t.Completed, checkMark+" Completed", "Active")
	lines = append(lines, row("Status", status, func(s string) string {
		return bg.Render(s, styles.TitleStyle(t.Completed))
	}))
	lines = append(lines, row("ID", fmt.Sprintf("%d", t.ID), text))

	switch {
	case !t.HasUser():
		lines = append(lines, row("User", "unknown", muted))
	case m.userPending[t.UserID]:
		lines = append(lines, row("User", "loading...", muted))
	default:
		if u, ok := m.users[t.UserID]; ok {
			lines = append(lines, m.userLines(u, row, text, muted)...)
		} else if err, ok := m.userErrs[t.UserID]; ok {
			lines = append(lines, row("User", fmt.Sprintf("#%d unavailable", t.UserID), func(s string) string {
				return bg.Render(s, styles.DangerText)
			}))
			lines = append(lines, row("", err.Error(), muted))
		} else {
			lines = append(lines, row("User", fmt.Sprintf("#%d", t.UserID), text))
		}
	}

	lines = append(lines, "", bg.Space()+bg.Render("esc close · j/k next/prev", styles.FaintText))
	return strings.Join(lines, "\n")
}

func (m Model) userLines(u todo.User, row func(string, string, func(string) string) string, text, muted func(string) string) []string {
	name := u.Name
	if u.Username != "" {
		name += " (@" + u.Username + ")"
	}
	lines := []string{row("User", name, text)}
	if u.Email != "" {
		lines = append(lines, row("Email", u.Email, muted))
	}
	if u.Phone != "" {
		lines = append(lines, row("Phone", u.Phone, muted))
	}
	return lines
}
