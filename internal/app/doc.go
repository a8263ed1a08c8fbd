// Package app is todoview's composition root.
//
// Run loads config.toml, folds in command-line overrides, opens the log file,
// reads the saved theme, then builds the API client and the session
// controller and hands them to the UI:
//
//	config.Load ──► applyOverrides ──► logging.New
//	                                      │
//	prefs.Load ──────────────┐            ▼
//	api.NewClient ──► session.New ──► ui.Run (blocks)
//
// Config and client errors abort startup. A broken prefs file only logs a
// warning; the UI starts with the default theme.
package app
