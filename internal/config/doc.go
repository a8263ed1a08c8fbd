// Package config loads todoview's TOML configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/todoview/config.toml (default)
//  3. If the config file doesn't exist, use Default()
//  4. If the file exists but fields are missing or empty, use defaults for them
//
// # TOML Format
//
//	api_base = "https://jsonplaceholder.typicode.com"
//	request_timeout = "5s"
//	refetch_on_filter = true
//	discard_stale = true
//	max_requests_per_second = 0.0
//	refresh_interval = "0s"
//	show_fetch_errors = false
//	log_file = "~/.local/state/todoview/todoview.log"
//	log_level = "info"
//
// Every field is optional. Durations use time.ParseDuration syntax. A
// refresh_interval of zero disables auto refresh, and a rate of zero disables
// the request limiter. Fetch failures are only logged unless show_fetch_errors
// is true, which also puts them in the header. Setting log_file to "" turns
// logging off.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML syntax errors
//   - Unparseable or out-of-range durations and rates
//   - Unknown log levels
//
// The app treats all of these as fatal at startup.
package config
