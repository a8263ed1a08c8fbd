package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/five82/todoview/internal/api"
	"github.com/five82/todoview/internal/todo"
)

// renderHeader renders the status bar: counts, loader, freshness and the
// last fetch error.
func (m Model) renderHeader() string {
	styles := m.theme.StylesOn(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	snap := m.snapshot
	active, completed := todo.Counts(snap.Todos)

	parts := []string{
		bg.Render("todoview", styles.Logo),
		bg.Render("Shown:", styles.MutedText) + bg.Space() +
			bg.Render(fmt.Sprintf("%d/%d", len(snap.Todos), snap.Total), styles.Text),
	}
	if !compact {
		parts = append(parts,
			bg.Render("Active:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", active), styles.DangerText),
			bg.Render("Done:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", completed), styles.SuccessText),
		)
	}

	if snap.Loading {
		parts = append(parts, m.spinner.View()+bg.Space()+bg.Render("Loading", styles.WarningText))
	}

	if m.showErrors && snap.LastError != nil {
		label := classifyFetchError(snap.LastError)
		if snap.IsOffline() {
			label += " (x" + fmt.Sprint(snap.ConsecutiveFailures) + ")"
		}
		detail := truncate(snap.LastError.Error(), ternaryInt(compact, 30, 60))
		parts = append(parts,
			bg.Render(label, styles.DangerText)+bg.Space()+bg.Render(detail, styles.MutedText))
	} else if !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("Updated "+humanize.Time(snap.LastUpdated), styles.FaintText))
	}

	return styles.Header.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(bg.Join(parts, "  "))
}

// classifyFetchError returns a short label for a fetch error.
func classifyFetchError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, api.ErrInvalidPayload) {
		return "BAD PAYLOAD"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "returned status"):
		return "HTTP ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current mode.
func (m Model) renderCommandBar() string {
	styles := m.theme.StylesOn(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.filterInput.Focused():
		commands = []cmd{
			{"enter/esc", "Done"},
			{"ctrl+u", "Clear"},
		}
	case m.showLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
			{"r", "Reload"},
			{"esc/L", "Close"},
		}
	case m.snapshot.HasSelected:
		commands = []cmd{
			{"j/k", "Next/Prev"},
			{"esc", "Close"},
			{"r", "Refresh"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"/", "Search"},
			{"s", statusLabel(m.snapshot.Filter.Status)}, // shows current status
			{"x", "Clear"},
			{"j/k", "Navigate"},
			{"enter", "Details"},
			{"r", "Refresh"},
			{"L", "Log"},
			{"?", "More"},
		}
	}

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).MaxWidth(m.width).MaxHeight(1).Render(bg.Join(segments, "  "))
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
