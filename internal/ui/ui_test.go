package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/todoview/internal/api"
	"github.com/five82/todoview/internal/session"
	"github.com/five82/todoview/internal/todo"
)

type fakeFetcher struct {
	mu        sync.Mutex
	todos     []todo.Todo
	err       error
	users     map[int]todo.User
	todoCalls int
	userCalls int
}

func (f *fakeFetcher) FetchTodos(context.Context) ([]todo.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todoCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.todos, nil
}

func (f *fakeFetcher) FetchUser(_ context.Context, id int) (todo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	u, ok := f.users[id]
	if !ok {
		return todo.User{}, errors.New("api /users returned status 404")
	}
	return u, nil
}

func (f *fakeFetcher) calls() (todos, users int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.todoCalls, f.userCalls
}

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		todos: []todo.Todo{
			{ID: 1, UserID: 1, Title: "Write report", Completed: false},
			{ID: 2, UserID: 1, Title: "Ship report", Completed: true},
			{ID: 3, UserID: 2, Title: "Buy Milk", Completed: false},
		},
		users: map[int]todo.User{
			1: {ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "leanne@example.com"},
		},
	}
}

// collect runs cmd and returns the fetch and user results it produces.
// Timers such as spinner ticks, cursor blinks and refresh ticks are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		switch msg := msg.(type) {
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, collect(c)...)
			}
			return out
		case fetchDoneMsg, userMsg, logLoadedMsg:
			return []tea.Msg{msg}
		}
		return nil
	case <-time.After(150 * time.Millisecond):
		return nil
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model, cmd
}

// settle feeds every fetch/user result produced by cmd back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		m, _ = update(t, m, msg)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(t, m, keyMsg(k))
		m = settle(t, m, cmd)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = press(t, m, string(r))
	}
	return m
}

func newModel(t *testing.T, f *fakeFetcher, opts session.Options) Model {
	t.Helper()
	m := New(Options{
		Session:   session.New(f, opts),
		Client:    f,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 30})
	return settle(t, m, m.Init())
}

func shownIDs(m Model) []int {
	out := make([]int, 0, len(m.snapshot.Todos))
	for _, t := range m.snapshot.Todos {
		out = append(out, t.ID)
	}
	return out
}

func TestModel_InitialFetchRendersList(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	assert.False(t, m.snapshot.Loading)
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))

	view := m.View()
	assert.Contains(t, view, "Write report")
	assert.Contains(t, view, "Ship report")
	assert.Contains(t, view, "Buy Milk")
	assert.Contains(t, view, "3/3")
	assert.Contains(t, view, "Todos (3)")
	assert.NotContains(t, view, eyeOpen)
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(Options{Client: newFetcher()})
	assert.Equal(t, "Loading...", m.View())
}

func TestModel_TypingQuerySetsLoadingUntilFetchSettles(t *testing.T) {
	f := newFetcher()
	m := newModel(t, f, session.DefaultOptions())

	m = press(t, m, "/")
	require.True(t, m.filterInput.Focused())

	m, cmd := update(t, m, keyMsg("m"))
	assert.True(t, m.snapshot.Loading, "loading flag set in the same update as the keystroke")
	assert.Equal(t, "m", m.snapshot.Filter.Query)
	assert.Contains(t, m.View(), "Loading")

	m = settle(t, m, cmd)
	assert.False(t, m.snapshot.Loading)

	m = typeText(t, m, "ILK")
	assert.Equal(t, "mILK", m.snapshot.Filter.Query)
	assert.Equal(t, []int{3}, shownIDs(m))

	todoCalls, _ := f.calls()
	assert.Equal(t, 5, todoCalls, "initial fetch plus one per keystroke")

	view := m.View()
	assert.Contains(t, view, "Buy Milk")
	assert.NotContains(t, view, "Ship report")
}

func TestModel_FailedFetchKeepsListSilently(t *testing.T) {
	f := newFetcher()
	m := newModel(t, f, session.DefaultOptions())

	f.mu.Lock()
	f.err = errors.New("execute request: dial tcp: connection refused")
	f.mu.Unlock()

	m = press(t, m, "r")
	assert.False(t, m.snapshot.Loading)
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))
	require.Error(t, m.snapshot.LastError)

	view := m.View()
	assert.Contains(t, view, "Write report")
	assert.Contains(t, view, "Updated")
	assert.NotContains(t, view, "OFFLINE")
	assert.NotContains(t, view, "connection refused")
}

func TestModel_FailedFetchShownWhenEnabled(t *testing.T) {
	f := newFetcher()
	m := New(Options{
		Session:         session.New(f, session.DefaultOptions()),
		Client:          f,
		ShowFetchErrors: true,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 30})
	m = settle(t, m, m.Init())

	f.mu.Lock()
	f.err = errors.New("boom")
	f.mu.Unlock()

	m = press(t, m, "r")
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))

	view := m.View()
	assert.Contains(t, view, "ERROR")
	assert.Contains(t, view, "boom")
	assert.Contains(t, view, "Write report")
}

func TestModel_LongQueryIsNotCut(t *testing.T) {
	m := newModel(t, newFetcher(), session.Options{RefetchOnFilter: false, DiscardStale: true})

	m = press(t, m, "/")
	long := strings.Repeat("a", 130)
	m = typeText(t, m, long)
	assert.Equal(t, long, m.snapshot.Filter.Query)
	assert.Empty(t, m.snapshot.Todos)
}

func TestModel_LeaveSearchAndClearQuery(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "/")
	m = typeText(t, m, "report")
	m = press(t, m, "esc")
	require.False(t, m.filterInput.Focused())
	assert.Equal(t, []int{1, 2}, shownIDs(m))

	// x outside the input clears the query
	m = press(t, m, "x")
	assert.Equal(t, "", m.snapshot.Filter.Query)
	assert.Equal(t, "", m.filterInput.Value())
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))

	// ctrl+u inside the input clears it too
	m = press(t, m, "/")
	m = typeText(t, m, "milk")
	m = press(t, m, "ctrl+u", "enter")
	assert.Equal(t, "", m.snapshot.Filter.Query)
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))
}

func TestModel_StatusCycling(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "s")
	assert.Equal(t, todo.StatusActive, m.snapshot.Filter.Status)
	assert.Equal(t, []int{1, 3}, shownIDs(m))

	m = press(t, m, "right")
	assert.Equal(t, todo.StatusCompleted, m.snapshot.Filter.Status)
	assert.Equal(t, []int{2}, shownIDs(m))

	m = press(t, m, "left")
	assert.Equal(t, todo.StatusActive, m.snapshot.Filter.Status)

	m = press(t, m, "S")
	assert.Equal(t, todo.StatusAll, m.snapshot.Filter.Status)
	assert.Equal(t, []int{1, 2, 3}, shownIDs(m))
}

func TestModel_QueryAndStatusCombine(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "/")
	m = typeText(t, m, "report")
	m = press(t, m, "enter", "s", "s")

	assert.Equal(t, []int{2}, shownIDs(m))
	assert.Contains(t, m.View(), "Todos (1) /report · Completed")
}

func TestModel_EmptyResultRendersPlaceholder(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "/")
	m = typeText(t, m, "zzz")
	assert.Empty(t, m.snapshot.Todos)
	assert.Contains(t, m.View(), "No todos")
}

func TestModel_SelectOpensDetailAndMovesReplaceIt(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "j", "enter")
	require.True(t, m.snapshot.HasSelected)
	assert.Equal(t, 2, m.snapshot.Selected.ID)

	view := m.View()
	assert.Contains(t, view, "Todo #2")
	assert.Contains(t, view, "Completed")
	assert.Contains(t, view, eyeOpen)

	m = press(t, m, "j")
	assert.Equal(t, 3, m.snapshot.Selected.ID)
	assert.Contains(t, m.View(), "Todo #3")

	m = press(t, m, "k")
	assert.Equal(t, 2, m.snapshot.Selected.ID)

	m = press(t, m, "esc")
	assert.False(t, m.snapshot.HasSelected)
	assert.NotContains(t, m.View(), eyeOpen)
}

func TestModel_SelectingSameTodoAgainKeepsDetail(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	// cursor is already on the last row, so j re-selects the same todo
	m = press(t, m, "G", "enter", "j")
	require.True(t, m.snapshot.HasSelected)
	assert.Equal(t, 3, m.snapshot.Selected.ID)

	m = press(t, m, "j")
	assert.True(t, m.snapshot.HasSelected)
	assert.Equal(t, 3, m.snapshot.Selected.ID)
}

func TestModel_EnterOnShownTodoKeepsDetail(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "j", "enter")
	require.True(t, m.snapshot.HasSelected)
	require.Equal(t, 2, m.snapshot.Selected.ID)

	m = press(t, m, "enter")
	assert.True(t, m.snapshot.HasSelected, "selecting the shown todo again must not close the pane")
	assert.Equal(t, 2, m.snapshot.Selected.ID)
	assert.Contains(t, m.View(), "Todo #2")
}

func TestModel_CloseKeys(t *testing.T) {
	for _, k := range []string{"esc", "q"} {
		m := newModel(t, newFetcher(), session.DefaultOptions())
		m = press(t, m, "enter")
		require.True(t, m.snapshot.HasSelected, k)

		var cmd tea.Cmd
		m, cmd = update(t, m, keyMsg(k))
		assert.False(t, m.snapshot.HasSelected, "%s should close the detail pane", k)
		assert.Nil(t, cmd, "%s should not quit while the detail pane is open", k)
	}
}

func TestModel_DetailLoadsAndCachesUser(t *testing.T) {
	f := newFetcher()
	m := newModel(t, f, session.DefaultOptions())

	m = press(t, m, "enter")
	assert.Contains(t, m.View(), "Leanne Graham (@Bret)")
	assert.Contains(t, m.View(), "leanne@example.com")

	m = press(t, m, "j") // todo 2, same user
	_, userCalls := f.calls()
	assert.Equal(t, 1, userCalls, "user should be cached")

	m = press(t, m, "j") // todo 3, unknown user
	assert.Contains(t, m.View(), "#2 unavailable")
}

func TestModel_FetchOnceModeFiltersLocally(t *testing.T) {
	f := newFetcher()
	m := newModel(t, f, session.Options{RefetchOnFilter: false, DiscardStale: true})

	m = press(t, m, "/")
	m = typeText(t, m, "milk")
	m = press(t, m, "enter", "s")

	assert.Equal(t, []int{3}, shownIDs(m))
	todoCalls, _ := f.calls()
	assert.Equal(t, 1, todoCalls, "filter changes must not fetch")

	m = press(t, m, "r")
	todoCalls, _ = f.calls()
	assert.Equal(t, 2, todoCalls, "manual refresh still fetches")
}

func TestModel_HelpOverlay(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "?")
	require.True(t, m.showHelp)
	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "Clear search")

	m = press(t, m, "j")
	assert.False(t, m.showHelp)
	assert.Equal(t, 0, m.cursor, "the closing key is swallowed")
}

func TestModel_CycleThemePersists(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())
	require.Equal(t, "Nightfox", m.theme.Name)

	m = press(t, m, "T")
	assert.Equal(t, "Kanagawa", m.theme.Name)

	data, err := os.ReadFile(m.prefsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kanagawa")
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := newModel(t, newFetcher(), session.DefaultOptions())
		_, cmd := update(t, m, keyMsg(k))
		require.NotNil(t, cmd, k)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "%s should quit", k)
	}
}

func TestModel_CtrlCQuitsWhileSearching(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())
	m = press(t, m, "/")

	_, cmd := update(t, m, keyMsg("ctrl+c"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestModel_QTypesIntoSearch(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())
	m = press(t, m, "/", "q")
	assert.Equal(t, "q", m.snapshot.Filter.Query)
}

func TestModel_AutoRefreshScheduling(t *testing.T) {
	m := New(Options{Client: newFetcher(), RefreshEvery: time.Minute})
	_, cmd := update(t, m, fetchDoneMsg{auto: true})
	assert.NotNil(t, cmd, "automatic fetches re-arm the timer")

	_, cmd = update(t, m, fetchDoneMsg{auto: false})
	assert.Nil(t, cmd, "manual fetches do not start a second timer")

	m = New(Options{Client: newFetcher()})
	_, cmd = update(t, m, fetchDoneMsg{auto: true})
	assert.Nil(t, cmd, "no timer without a refresh interval")
}

func TestModel_RefreshTickStartsFetch(t *testing.T) {
	f := newFetcher()
	m := newModel(t, f, session.DefaultOptions())

	m, cmd := update(t, m, refreshTickMsg(time.Now()))
	assert.True(t, m.snapshot.Loading)
	m = settle(t, m, cmd)
	assert.False(t, m.snapshot.Loading)

	todoCalls, _ := f.calls()
	assert.Equal(t, 2, todoCalls)
}

func TestModel_CursorFollowsTodoAcrossRefilter(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())

	m = press(t, m, "G") // Buy Milk
	m = press(t, m, "s") // active: 1, 3
	got, ok := m.cursorTodo()
	require.True(t, ok)
	assert.Equal(t, 3, got.ID)
}

func TestModel_NarrowLayoutStillRenders(t *testing.T) {
	m := newModel(t, newFetcher(), session.DefaultOptions())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 12})
	m = press(t, m, "enter")

	view := m.View()
	assert.Contains(t, view, "Todo #1")
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 60, "line too wide: %q", line)
	}
}

func TestClassifyFetchError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("execute request: dial tcp: connection refused"), "OFFLINE"},
		{errors.New("dial tcp: lookup nowhere: no such host"), "HOST NOT FOUND"},
		{context.DeadlineExceeded, "TIMEOUT"},
		{errors.New("api /todos returned status 500"), "HTTP ERROR"},
		{errors.Join(api.ErrInvalidPayload, errors.New("missing id")), "BAD PAYLOAD"},
		{errors.New("weird"), "ERROR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyFetchError(tt.err), "%v", tt.err)
	}
}

func newLogModel(t *testing.T, logPath string) Model {
	t.Helper()
	f := newFetcher()
	m := New(Options{
		Session: session.New(f, session.DefaultOptions()),
		Client:  f,
		LogPath: logPath,
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 30})
	return settle(t, m, m.Init())
}

func TestModel_LogPaneShowsEntries(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "todoview.log")
	lines := "time=2026-10-19T09:12:44Z level=info prefix=todoview msg=\"todos fetched\" count=3\n" +
		"time=2026-10-19T09:12:50Z level=warn prefix=todoview msg=\"todo fetch failed\" err=boom\n"
	require.NoError(t, os.WriteFile(logPath, []byte(lines), 0o644))

	m := newLogModel(t, logPath)
	m = press(t, m, "L")

	require.True(t, m.showLogs)
	require.Len(t, m.logEntries, 2)
	view := m.View()
	assert.Contains(t, view, "todo fetch failed err=boom")
	assert.Contains(t, view, "WARN")
	assert.Contains(t, view, "esc/L")

	// List keys go to the log pane while it is open.
	cursor := m.cursor
	m = press(t, m, "j")
	assert.Equal(t, cursor, m.cursor)
	assert.False(t, m.snapshot.HasSelected)

	m = press(t, m, "esc")
	assert.False(t, m.showLogs)
	assert.Contains(t, m.View(), "Todos (3)")
}

func TestModel_LogPaneReloads(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "todoview.log")
	require.NoError(t, os.WriteFile(logPath, []byte("level=info msg=first\n"), 0o644))

	m := newLogModel(t, logPath)
	m = press(t, m, "L")
	require.Len(t, m.logEntries, 1)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("level=error msg=second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m = press(t, m, "r")
	require.Len(t, m.logEntries, 2)
	assert.Equal(t, "second", m.logEntries[1].Message)
}

func TestModel_LogPaneWithoutLogFile(t *testing.T) {
	m := newLogModel(t, "")
	m = press(t, m, "L")

	require.True(t, m.showLogs)
	assert.Contains(t, m.View(), "Logging is off")

	m = press(t, m, "L")
	assert.False(t, m.showLogs)
}
