package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings todoview reads from config.toml.
type Config struct {
	APIBase              string
	RequestTimeout       time.Duration
	RefetchOnFilter      bool
	DiscardStale         bool
	MaxRequestsPerSecond float64
	RefreshInterval      time.Duration
	ShowFetchErrors      bool
	LogFile              string
	LogLevel             string
}

const (
	defaultConfigPath     = "~/.config/todoview/config.toml"
	defaultAPIBase        = "https://jsonplaceholder.typicode.com"
	defaultRequestTimeout = 5 * time.Second
	defaultLogFile        = "~/.local/state/todoview/todoview.log"
	defaultLogLevel       = "info"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		APIBase:         defaultAPIBase,
		RequestTimeout:  defaultRequestTimeout,
		RefetchOnFilter: true,
		DiscardStale:    true,
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the todoview config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase              string   `toml:"api_base"`
		RequestTimeout       string   `toml:"request_timeout"`
		RefetchOnFilter      *bool    `toml:"refetch_on_filter"`
		DiscardStale         *bool    `toml:"discard_stale"`
		MaxRequestsPerSecond *float64 `toml:"max_requests_per_second"`
		RefreshInterval      string   `toml:"refresh_interval"`
		ShowFetchErrors      *bool    `toml:"show_fetch_errors"`
		LogFile              *string  `toml:"log_file"`
		LogLevel             string   `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if base := strings.TrimSpace(raw.APIBase); base != "" {
		cfg.APIBase = base
	}
	if s := strings.TrimSpace(raw.RequestTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse request_timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("request_timeout must be positive, got %s", d)
		}
		cfg.RequestTimeout = d
	}
	if raw.RefetchOnFilter != nil {
		cfg.RefetchOnFilter = *raw.RefetchOnFilter
	}
	if raw.DiscardStale != nil {
		cfg.DiscardStale = *raw.DiscardStale
	}
	if raw.MaxRequestsPerSecond != nil {
		if *raw.MaxRequestsPerSecond < 0 {
			return Config{}, fmt.Errorf("max_requests_per_second must not be negative, got %v", *raw.MaxRequestsPerSecond)
		}
		cfg.MaxRequestsPerSecond = *raw.MaxRequestsPerSecond
	}
	if s := strings.TrimSpace(raw.RefreshInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("parse refresh_interval: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("refresh_interval must not be negative, got %s", d)
		}
		cfg.RefreshInterval = d
	}
	if raw.ShowFetchErrors != nil {
		cfg.ShowFetchErrors = *raw.ShowFetchErrors
	}
	// An explicit empty log_file disables logging.
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
		if cfg.LogFile != "" {
			cfg.LogFile = mustExpand(cfg.LogFile)
		}
	}
	if lvl := strings.ToLower(strings.TrimSpace(raw.LogLevel)); lvl != "" {
		if _, err := log.ParseLevel(lvl); err != nil {
			return Config{}, fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
