package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/five82/todoview/internal/todo"
)

// Source produces the complete, unfiltered todo list.
type Source interface {
	FetchTodos(ctx context.Context) ([]todo.Todo, error)
}

// Options control how filter changes and overlapping fetches are handled.
type Options struct {
	// RefetchOnFilter re-fetches the list on every filter change. When false the
	// cached list from the last fetch is filtered locally instead.
	RefetchOnFilter bool
	// DiscardStale drops the result of any fetch that is not the newest one
	// begun. When false, whichever fetch settles last wins.
	DiscardStale bool
	Logger       *log.Logger
}

// DefaultOptions returns the options used when no config overrides them.
func DefaultOptions() Options {
	return Options{RefetchOnFilter: true, DiscardStale: true}
}

var errNoSource = errors.New("no data source")

// Ticket identifies one fetch and the filter it was started under.
type Ticket struct {
	Generation uint64
	Filter     todo.State
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	Filter              todo.State
	Todos               []todo.Todo // filtered, in source order
	Total               int         // size of the last fetched list
	Selected            todo.Todo
	HasSelected         bool
	Loading             bool
	Fetched             bool // true once any fetch has succeeded
	Generation          uint64
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Controller owns the filter and selection state and orchestrates fetch-then-filter.
type Controller struct {
	source Source
	opts   Options
	logger *log.Logger

	mu          sync.RWMutex
	filter      todo.State
	all         []todo.Todo
	shown       []todo.Todo
	selected    *todo.Todo
	loading     bool
	generation  uint64
	fetched     bool
	lastUpdated time.Time
	lastErr     error
	failures    int
}

// New builds a Controller that reads from source.
func New(source Source, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		source: source,
		opts:   opts,
		logger: logger,
		shown:  []todo.Todo{},
	}
}

// RefetchOnFilter reports whether filter changes should trigger a fetch.
func (c *Controller) RefetchOnFilter() bool {
	return c.opts.RefetchOnFilter
}

// Filter returns the current filter state.
func (c *Controller) Filter() todo.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// SetQuery replaces the text query. It reports whether the query changed.
func (c *Controller) SetQuery(query string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filter.Query == query {
		return false
	}
	c.filter.Query = query
	return true
}

// ClearQuery empties the text query.
func (c *Controller) ClearQuery() bool {
	return c.SetQuery("")
}

// SetStatus replaces the status selector. It reports whether the status changed.
func (c *Controller) SetStatus(status todo.Status) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filter.Status == status {
		return false
	}
	c.filter.Status = status
	return true
}

// Begin marks a fetch as started and returns its ticket. Loading is true from
// this point until the fetch settles.
func (c *Controller) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.loading = true
	return Ticket{Generation: c.generation, Filter: c.filter}
}

// Fetch runs the fetch described by t. On success the displayed list is
// replaced by the filtered result; on failure it is left as it was. Loading is
// cleared on every path.
func (c *Controller) Fetch(ctx context.Context, t Ticket) error {
	defer c.settle(t)

	if c.source == nil {
		c.recordFailure(t, errNoSource)
		return errNoSource
	}
	todos, err := c.source.FetchTodos(ctx)
	if err != nil {
		c.recordFailure(t, err)
		return fmt.Errorf("fetch todos: %w", err)
	}
	c.apply(t, todos)
	return nil
}

// Refresh begins and runs a fetch in one call.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Fetch(ctx, c.Begin())
}

// Reapply filters the cached list with the current filter without fetching.
// It reports whether a cached list was available.
func (c *Controller) Reapply() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetched {
		return false
	}
	c.shown = c.filter.Apply(c.all)
	return true
}

// Select shows t in the detail overlay, replacing any todo already shown.
func (c *Controller) Select(t todo.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	selected := t
	c.selected = &selected
}

// CloseDetail dismisses the detail overlay.
func (c *Controller) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns the todo shown in the detail overlay, if any.
func (c *Controller) Selected() (todo.Todo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return todo.Todo{}, false
	}
	return *c.selected, true
}

// IsSelected reports whether the todo with id is open in the overlay.
func (c *Controller) IsSelected(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected != nil && c.selected.ID == id
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Filter:              c.filter,
		Todos:               cloneTodos(c.shown),
		Total:               len(c.all),
		Loading:             c.loading,
		Fetched:             c.fetched,
		Generation:          c.generation,
		LastUpdated:         c.lastUpdated,
		ConsecutiveFailures: c.failures,
	}
	if c.selected != nil {
		snap.Selected = *c.selected
		snap.HasSelected = true
	}
	if c.lastErr != nil {
		snap.LastError = fmt.Errorf("%w", c.lastErr)
	}
	return snap
}

func (c *Controller) stale(t Ticket) bool {
	return c.opts.DiscardStale && t.Generation != c.generation
}

func (c *Controller) apply(t Ticket, todos []todo.Todo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(t) {
		c.logger.Debug("discarding stale fetch", "generation", t.Generation, "latest", c.generation)
		return
	}

	filter := t.Filter
	if !c.opts.RefetchOnFilter {
		filter = c.filter
	}
	c.all = cloneTodos(todos)
	c.shown = filter.Apply(c.all)
	c.fetched = true
	c.lastErr = nil
	c.lastUpdated = time.Now()
	c.failures = 0

	c.logger.Info("todos fetched",
		"generation", t.Generation,
		"total", len(c.all),
		"shown", len(c.shown),
		"query", filter.Query,
		"status", filter.Status.String())
}

func (c *Controller) recordFailure(t Ticket, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stale(t) {
		c.logger.Debug("ignoring stale fetch failure", "generation", t.Generation, "err", err)
		return
	}
	c.lastErr = err
	c.failures++
	c.logger.Warn("todo fetch failed", "generation", t.Generation, "failures", c.failures, "err", err)
}

func (c *Controller) settle(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(t) {
		return
	}
	c.loading = false
}

func cloneTodos(items []todo.Todo) []todo.Todo {
	dup := make([]todo.Todo, len(items))
	copy(dup, items)
	return dup
}
