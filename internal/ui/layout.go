package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops the
	// active/done counters and shortens error text.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold above which the detail pane gets
	// the larger share of the screen.
	LayoutExtraWideWidth = 160
)
