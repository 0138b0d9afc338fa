package main

import (
	"context"

	"marketplace/internal/api"
	"marketplace/internal/cli"
	"marketplace/internal/config"
	"marketplace/internal/logging"
)

// Bootstrap loads configuration, opens the session store and wires the API.
// The persisted session is restored and watched until the runtime is closed.
func Bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Runtime, error) {
	cfg, err := config.NewLoader(opts.EnvFile).LoadWithOverrides(opts.Overrides)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	repo, err := config.CreateRepository(cfg)
	if err != nil {
		return nil, err
	}

	businessAPI, err := api.New(repo, api.OptionsFromConfig(cfg, logger))
	if err != nil {
		repo.Close()
		return nil, err
	}

	// A broken store only costs the saved login
	if err := businessAPI.RestoreSession(ctx); err != nil {
		logger.Warn("could not restore session", "error", err)
	}

	watchCtx, cancelWatch := context.WithCancel(ctx)
	watcher := businessAPI.StartExpiryWatcher(watchCtx)

	return &cli.Runtime{
		API:    businessAPI,
		Config: cfg,
		Close: func() error {
			cancelWatch()
			if watcher != nil {
				watcher.Stop()
			}
			return repo.Close()
		},
	}, nil
}
