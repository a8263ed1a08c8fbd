package todo

import "strings"

// Filter returns the todos whose title contains query (case-insensitive) and
// whose completion matches status. Order is preserved and all is never
// modified. An unrecognized status returns every todo unfiltered.
func Filter(all []Todo, query string, status Status) []Todo {
	out := make([]Todo, 0, len(all))
	if !status.Valid() {
		return append(out, all...)
	}

	needle := strings.ToLower(query)
	for _, t := range all {
		if !containsFold(t.Title, needle) {
			continue
		}
		switch status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// MatchesQuery reports whether the todo's title contains query, ignoring case.
func MatchesQuery(t Todo, query string) bool {
	return containsFold(t.Title, strings.ToLower(query))
}

// Counts tallies active and completed todos.
func Counts(all []Todo) (active, completed int) {
	for _, t := range all {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return active, completed
}

// needle must already be lower-cased.
func containsFold(title, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), needle)
}
