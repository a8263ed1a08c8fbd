// Package todo defines the to-do record model and the filter engine that
// selects which records are displayed.
package todo

import (
	"errors"
	"fmt"
	"strings"
)

// Todo mirrors a single record returned by the todos endpoint.
type Todo struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// HasUser reports whether the record references an upstream user.
func (t Todo) HasUser() bool {
	return t.UserID > 0
}

// User is the owner of a todo, shown in the detail pane.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Status selects todos by completion.
type Status int

const (
	StatusAll Status = iota
	StatusActive
	StatusCompleted
)

// ErrUnknownStatus is returned by ParseStatus for names outside the enumeration.
var ErrUnknownStatus = errors.New("unknown status")

var statusOrder = []Status{StatusAll, StatusActive, StatusCompleted}

// Statuses returns the selectable statuses in selector order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

func (s Status) String() string {
	switch s {
	case StatusAll:
		return "all"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the three selectable statuses.
func (s Status) Valid() bool {
	return s >= StatusAll && s <= StatusCompleted
}

// Next returns the following status in selector order, wrapping around.
func (s Status) Next() Status {
	if !s.Valid() {
		return StatusAll
	}
	return statusOrder[(int(s)+1)%len(statusOrder)]
}

// Prev returns the preceding status in selector order, wrapping around.
func (s Status) Prev() Status {
	if !s.Valid() {
		return StatusAll
	}
	return statusOrder[(int(s)-1+len(statusOrder))%len(statusOrder)]
}

// ParseStatus maps a selector value to a Status.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return StatusAll, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	}
	return StatusAll, fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// State is the user's current filter selection. The zero value matches everything.
type State struct {
	Query  string
	Status Status
}

// Apply filters all with the receiver's query and status.
func (s State) Apply(all []Todo) []Todo {
	return Filter(all, s.Query, s.Status)
}

// IsZero reports whether the state is the default (empty query, all statuses).
func (s State) IsZero() bool {
	return s.Query == "" && s.Status == StatusAll
}
