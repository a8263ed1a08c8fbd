// Package ui provides the Bubble Tea terminal interface for todoview.
//
// # Layout
//
//	todoview  Shown: 2/200  Active: 1  Done: 1  Updated 3 seconds ago
//	/ milk                    Status [ All ]  Active   Completed
//	┌──────── Todos (2) /milk ────────┐┌─────────── Todo #7 ───────────┐
//	│#7    Buy Milk                  ◉││ Buy Milk                      │
//	│#42 ✓ Milkshake run             ○││                               │
//	│                                 ││ Status  Active                │
//	└─────────────────────────────────┘└───────────────────────────────┘
//	/:Search  s:All  x:Clear  j/k:Navigate  enter:Details  ?:More  T:Nightfox
//
// The detail pane only appears while a todo is selected. The eye marker
// (◉) shows which row it belongs to.
//
// # State
//
// The Model holds no todo data of its own. Filter, displayed list, selection
// and the loading flag live in a session.Controller, and the Model copies a
// session.Snapshot after every change and on every spinner tick. The only
// UI-owned state is the cursor, the search input, the help toggle, the theme,
// the log pane and the per-user cache for the detail pane.
//
// # Fetching
//
// Fetches run as tea.Cmd functions. The Model calls Controller.Begin inside
// Update, so the loader is visible in the same frame as the keystroke that
// changed the filter, and hands the ticket to a command that calls
// Controller.Fetch with a per-request timeout. The command reports back with
// fetchDoneMsg.
//
// When a refresh interval is configured, each automatic fetch schedules the
// next one with session.NextRefreshDelay, so repeated failures back off.
//
// # Key Handling
//
// Keys route by mode: help overlay first (any key closes it), then the search
// input, then the log pane, then the detail pane, then the list. ctrl+c
// always quits.
//
// # Log Pane
//
// L swaps the list for a viewport over the tail of todoview's own log file,
// read with logtail. The pane re-reads the file after every fetch while it is
// open.
package ui
