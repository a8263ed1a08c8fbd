package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/five82/todoview/internal/api"
	"github.com/five82/todoview/internal/config"
	"github.com/five82/todoview/internal/logging"
	"github.com/five82/todoview/internal/prefs"
	"github.com/five82/todoview/internal/session"
	"github.com/five82/todoview/internal/ui"
)

// Options configure the todoview application. Non-zero fields override the
// config file.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/todoview/prefs.toml
	Endpoint     string // API base URL
	RefreshEvery int    // seconds; zero keeps the configured interval
}

// Run boots the todoview TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = applyOverrides(cfg, opts)

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()

	prefsPath := opts.PrefsPath
	if strings.TrimSpace(prefsPath) == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("load prefs failed, using defaults", "path", prefsPath, "err", err)
	}

	client, err := api.NewClient(cfg.APIBase, api.Options{
		Timeout:           cfg.RequestTimeout,
		RequestsPerSecond: cfg.MaxRequestsPerSecond,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	ctrl := session.New(client, session.Options{
		RefetchOnFilter: cfg.RefetchOnFilter,
		DiscardStale:    cfg.DiscardStale,
		Logger:          logger,
	})

	logger.Info("starting",
		"api", client.BaseURL(),
		"refetch_on_filter", cfg.RefetchOnFilter,
		"discard_stale", cfg.DiscardStale,
		"refresh", cfg.RefreshInterval)

	err = ui.Run(ui.Options{
		Context:        ctx,
		Session:        ctrl,
		Client:         client,
		Logger:         logger,
		ThemeName:      userPrefs.Theme,
		PrefsPath:      prefsPath,
		LogPath:        cfg.LogFile,
		RefreshEvery:   cfg.RefreshInterval,
		RequestTimeout: cfg.RequestTimeout,

		ShowFetchErrors: cfg.ShowFetchErrors,
	})
	if err != nil {
		logger.Error("ui exited", "err", err)
		return err
	}
	logger.Info("stopped")
	return nil
}

// applyOverrides folds command-line flags into the loaded config.
func applyOverrides(cfg config.Config, opts Options) config.Config {
	if endpoint := strings.TrimSpace(opts.Endpoint); endpoint != "" {
		cfg.APIBase = endpoint
	}
	if opts.RefreshEvery > 0 {
		cfg.RefreshInterval = time.Duration(opts.RefreshEvery) * time.Second
	}
	return cfg
}
