package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/todoview/internal/api"
	"github.com/five82/todoview/internal/logtail"
	"github.com/five82/todoview/internal/prefs"
	"github.com/five82/todoview/internal/session"
	"github.com/five82/todoview/internal/todo"
)

// Options configures the UI.
type Options struct {
	Context context.Context
	Session *session.Controller
	// Client resolves users for the detail pane. When Session is nil it is
	// also used as the todo source.
	Client         api.Fetcher
	Logger         *log.Logger
	ThemeName      string
	PrefsPath      string // empty disables theme persistence
	LogPath        string // shown in the log pane
	RefreshEvery   time.Duration
	RequestTimeout time.Duration

	// ShowFetchErrors puts the last fetch error in the header. Failures are
	// always logged.
	ShowFetchErrors bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx            context.Context
	session        *session.Controller
	client         api.Fetcher
	logger         *log.Logger
	prefsPath      string
	logPath        string
	showErrors     bool
	refreshEvery   time.Duration
	requestTimeout time.Duration

	// UI state
	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	snapshot session.Snapshot
	cursor   int

	filterInput textinput.Model
	spinner     spinner.Model

	// Users for the detail pane, keyed by user id.
	users       map[int]todo.User
	userErrs    map[int]error
	userPending map[int]bool

	// Log pane
	showLogs    bool
	logViewport viewport.Model
	logEntries  []logtail.Entry
	logErr      error

	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctrl := opts.Session
	if ctrl == nil {
		var src session.Source
		if opts.Client != nil {
			src = opts.Client
		}
		ctrl = session.New(src, session.Options{RefetchOnFilter: true, DiscardStale: true, Logger: logger})
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "search titles"
	input.CharLimit = 0
	input.Width = 28

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := Model{
		ctx:            ctx,
		session:        ctrl,
		client:         opts.Client,
		logger:         logger,
		prefsPath:      opts.PrefsPath,
		logPath:        opts.LogPath,
		showErrors:     opts.ShowFetchErrors,
		refreshEvery:   opts.RefreshEvery,
		requestTimeout: timeout,
		keys:           DefaultKeyMap(),
		theme:          GetTheme(opts.ThemeName),
		filterInput:    input,
		spinner:        spin,
		logViewport:    viewport.New(0, 0),
		users:          make(map[int]todo.User),
		userErrs:       make(map[int]error),
		userPending:    make(map[int]bool),
	}
	m.applyThemeStyles()
	m.snapshot = ctrl.Snapshot()
	return m
}

// Init starts the first fetch and the spinner. The first fetch also arms the
// auto refresh timer when one is configured.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.beginFetch(true))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.filterInput.Width = max(min(m.width/3, 40), 10)
		m.resizeLogViewport()
		m.refreshLogContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncSnapshot()
		return m, cmd

	case fetchDoneMsg:
		m.syncSnapshot()
		var cmds []tea.Cmd
		if msg.auto {
			cmds = append(cmds, m.scheduleRefresh())
		}
		if m.showLogs {
			cmds = append(cmds, loadLogCmd(m.logPath))
		}
		return m, tea.Batch(cmds...)

	case logLoadedMsg:
		m.setLogEntries(msg.entries, msg.err)
		return m, nil

	case refreshTickMsg:
		return m, m.beginFetch(true)

	case userMsg:
		delete(m.userPending, msg.id)
		if msg.err != nil {
			m.userErrs[msg.id] = msg.err
			m.logger.Warn("user fetch failed", "user", msg.id, "err", msg.err)
		} else {
			m.users[msg.id] = msg.user
			delete(m.userErrs, msg.id)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey routes a key press to the active input mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Any key closes help
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.filterInput.Focused() {
		return m.handleSearchKey(msg)
	}
	if m.showLogs {
		return m.handleLogKey(msg)
	}
	if m.snapshot.HasSelected {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.beginFetch(false)
	case key.Matches(msg, m.keys.Logs):
		return m, m.openLogs()
	case key.Matches(msg, m.keys.FocusSearch):
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keys.ClearQuery):
		m.filterInput.SetValue("")
		if m.session.ClearQuery() {
			return m, m.filterChanged()
		}
	case key.Matches(msg, m.keys.NextStatus):
		return m, m.setStatus(m.snapshot.Filter.Status.Next())
	case key.Matches(msg, m.keys.PrevStatus):
		return m, m.setStatus(m.snapshot.Filter.Status.Prev())
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.snapshot.Todos)-1, 0)
	case key.Matches(msg, m.keys.Open):
		return m, m.selectCursor()
	}
	return m, nil
}

// handleSearchKey edits the query. Every change to the text re-runs the filter.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.LeaveSearch):
		m.filterInput.Blur()
		return m, nil
	case msg.String() == "ctrl+u":
		m.filterInput.SetValue("")
	default:
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.session.SetQuery(m.filterInput.Value()) {
		cmds = append(cmds, m.filterChanged())
	}
	return m, tea.Batch(cmds...)
}

// handleDetailKey handles keys while the detail pane is open. Moving the
// cursor replaces the shown todo.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.session.CloseDetail()
		m.syncSnapshot()
	case key.Matches(msg, m.keys.Open):
		return m, m.selectCursor()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, m.selectCursor()
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, m.selectCursor()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.beginFetch(false)
	case key.Matches(msg, m.keys.Logs):
		return m, m.openLogs()
	}
	return m, nil
}

// beginFetch marks a fetch as started and returns the command that runs it.
func (m *Model) beginFetch(auto bool) tea.Cmd {
	ticket := m.session.Begin()
	m.syncSnapshot()
	return fetchCmd(m.ctx, m.session, ticket, m.requestTimeout, auto)
}

// filterChanged re-fetches or re-filters locally, depending on the session mode.
func (m *Model) filterChanged() tea.Cmd {
	if m.session.RefetchOnFilter() {
		return m.beginFetch(false)
	}
	m.session.Reapply()
	m.syncSnapshot()
	return nil
}

func (m *Model) setStatus(status todo.Status) tea.Cmd {
	if !m.session.SetStatus(status) {
		return nil
	}
	return m.filterChanged()
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	delay := session.NextRefreshDelay(m.snapshot.ConsecutiveFailures, m.refreshEvery)
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return refreshTickMsg(t)
	})
}

// selectCursor opens the todo under the cursor in the detail pane.
func (m *Model) selectCursor() tea.Cmd {
	t, ok := m.cursorTodo()
	if !ok {
		return nil
	}
	m.session.Select(t)
	m.syncSnapshot()
	return m.loadUser(t)
}

func (m *Model) loadUser(t todo.Todo) tea.Cmd {
	if m.client == nil || !t.HasUser() {
		return nil
	}
	if _, ok := m.users[t.UserID]; ok {
		return nil
	}
	if m.userPending[t.UserID] {
		return nil
	}
	m.userPending[t.UserID] = true
	return userCmd(m.ctx, m.client, t.UserID, m.requestTimeout)
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyThemeStyles()
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs failed", "path", m.prefsPath, "err", err)
	}
}

// applyThemeStyles restyles the bubbles components for the current theme.
func (m *Model) applyThemeStyles() {
	surface := lipgloss.Color(m.theme.Surface)
	m.filterInput.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent)).Background(surface)
	m.filterInput.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Text)).Background(surface)
	m.filterInput.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Faint)).Background(surface)
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Background(surface)
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.refreshLogContent()
}

// syncSnapshot pulls the session state, keeping the cursor on the same todo
// when it is still displayed.
func (m *Model) syncSnapshot() {
	var currentID int
	if t, ok := m.cursorTodo(); ok {
		currentID = t.ID
	}

	m.snapshot = m.session.Snapshot()
	count := len(m.snapshot.Todos)
	if count == 0 {
		m.cursor = 0
		return
	}
	if currentID > 0 {
		for i, t := range m.snapshot.Todos {
			if t.ID == currentID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= count {
		m.cursor = count - 1
	}
}

func (m *Model) moveCursor(delta int) {
	count := len(m.snapshot.Todos)
	if count == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), count-1)
}

func (m Model) cursorTodo() (todo.Todo, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snapshot.Todos) {
		return todo.Todo{}, false
	}
	return m.snapshot.Todos[m.cursor], true
}

// renderMain renders header, filter bar, content and command bar.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n")
	if m.showLogs {
		b.WriteString(m.renderLogs(max(m.height-3, 3)))
	} else {
		b.WriteString(m.renderContent(max(m.height-3, 3)))
	}
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

// Messages

type fetchDoneMsg struct {
	ticket session.Ticket
	auto   bool
	err    error
}

type refreshTickMsg time.Time

type userMsg struct {
	id   int
	user todo.User
	err  error
}

// Commands

func fetchCmd(ctx context.Context, s *session.Controller, t session.Ticket, timeout time.Duration, auto bool) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		err := s.Fetch(reqCtx, t)
		return fetchDoneMsg{ticket: t, auto: auto, err: err}
	}
}

func userCmd(ctx context.Context, client api.Fetcher, id int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		user, err := client.FetchUser(reqCtx, id)
		return userMsg{id: id, user: user, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until it exits. Cancelling
// opts.Context stops the program without an error.
func Run(opts Options) error {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
