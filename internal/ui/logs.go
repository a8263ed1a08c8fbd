package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/todoview/internal/logtail"
)

// logTailLines is how much of the log file the pane keeps.
const logTailLines = 400

type logLoadedMsg struct {
	entries []logtail.Entry
	err     error
}

func loadLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := logtail.Tail(path, logTailLines)
		return logLoadedMsg{entries: entries, err: err}
	}
}

// openLogs shows the log pane and starts reading the log file.
func (m *Model) openLogs() tea.Cmd {
	m.showLogs = true
	m.resizeLogViewport()
	return loadLogCmd(m.logPath)
}

func (m *Model) resizeLogViewport() {
	// Content area is height-3, minus the box border.
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
}

// setLogEntries replaces the pane content. The view sticks to the bottom
// unless the user has scrolled up.
func (m *Model) setLogEntries(entries []logtail.Entry, err error) {
	m.logEntries = entries
	m.logErr = err
	follow := m.logViewport.AtBottom() || m.logViewport.TotalLineCount() == 0
	m.refreshLogContent()
	if follow {
		m.logViewport.GotoBottom()
	}
}

func (m *Model) refreshLogContent() {
	m.logViewport.SetContent(m.renderLogLines(m.logViewport.Width))
}

// handleLogKey handles keys while the log pane is open. Scrolling keys go to
// the viewport.
func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Close):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, loadLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	}
	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m Model) renderLogs(height int) string {
	title := "Log"
	if m.logPath != "" {
		title += " " + m.logPath
	}
	return m.renderTitledBox(title, m.logViewport.View(), m.width, height, true)
}

func (m Model) renderLogLines(width int) string {
	styles := m.theme.StylesOn(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	switch {
	case m.logPath == "":
		return bg.Render("Logging is off. Set log_file in config.toml to enable it.", styles.MutedText)
	case m.logErr != nil:
		return bg.Render(truncate(m.logErr.Error(), width), styles.DangerText)
	case len(m.logEntries) == 0:
		return bg.Render("Log is empty", styles.MutedText)
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.formatLogEntry(e, width))
	}
	return strings.Join(lines, "\n")
}

// formatLogEntry renders "15:04:05 WARN message key=value ..." truncated to width.
func (m Model) formatLogEntry(e logtail.Entry, width int) string {
	styles := m.theme.StylesOn(m.theme.FocusBg)
	bg := NewBgStyle(m.theme.FocusBg)

	if e.Level == "" {
		return bg.Render(truncate(e.Raw, width), styles.Text)
	}

	stamp := e.Time
	if ts, err := time.Parse(time.RFC3339, e.Time); err == nil {
		stamp = ts.Local().Format("15:04:05")
	}

	levelStyle := styles.InfoText
	switch e.Level {
	case "warn":
		levelStyle = styles.WarningText
	case "error", "fatal":
		levelStyle = styles.DangerText
	case "debug":
		levelStyle = styles.FaintText
	}

	var fields strings.Builder
	for _, f := range e.Fields {
		fmt.Fprintf(&fields, " %s=%s", f.Key, f.Value)
	}

	head := fmt.Sprintf("%s %-5s ", stamp, strings.ToUpper(e.Level))
	rest := truncate(e.Message+fields.String(), max(width-len([]rune(head)), 1))

	return bg.Render(stamp, styles.FaintText) + bg.Space() +
		bg.Render(fmt.Sprintf("%-5s", strings.ToUpper(e.Level)), levelStyle) + bg.Space() +
		bg.Render(rest, styles.Text)
}
