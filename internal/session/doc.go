// Package session owns the interactive state of todoview: the filter, the
// displayed list, the selected todo and the loading flag.
//
// # Overview
//
// The Controller sits between the API client and the UI. Every fetch goes
// through it, and every render reads a Snapshot from it:
//
//	UI (Update loop)               tea.Cmd goroutine
//	┌────────────────┐            ┌────────────────────┐
//	│ SetQuery()     │            │                    │
//	│ SetStatus()    │            │                    │
//	│ t := Begin()   │───────────→│ Fetch(ctx, t)      │
//	│      ↓         │            │   source.FetchTodos│
//	│ Snapshot()     │←───────────│   filter + store   │
//	│ render         │  (mutex)   │   settle loading   │
//	└────────────────┘            └────────────────────┘
//
// Begin and Fetch are split so the UI can set the loading flag synchronously
// in Update and run the network call as a command.
//
// # Fetch Semantics
//
// A successful fetch replaces the cached list and the displayed list, clears
// LastError and resets ConsecutiveFailures. A failed fetch keeps both lists,
// records LastError and increments ConsecutiveFailures. Loading is cleared on
// both paths.
//
// With Options.DiscardStale each Ticket carries a generation. Results and
// failures from any generation other than the newest are dropped, and loading
// stays true until the newest fetch settles. Without it, whichever fetch
// settles last decides the displayed list.
//
// With Options.RefetchOnFilter unset, the UI calls Reapply on filter changes
// and the cached list is filtered locally.
//
// # Selection
//
// Select always shows the given todo; selecting the one already shown keeps it
// shown. CloseDetail is the only way to dismiss the overlay.
//
// # Snapshots
//
// Snapshot returns copies of the todo slice and the error so callers can hold
// them across renders without locking.
package session
