package main

import (
	"context"
	"io"
	"log/slog"

	"neuro-sync/app"
	"neuro-sync/config"
	"neuro-sync/config/setup"
	"neuro-sync/services"
)

func openApp(ctx context.Context, opts *rootOptions, stderr io.Writer) (*app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := setup.InitDatabase(ctx, cfg.Database(), logger)
	if err != nil {
		return nil, nil, err
	}

	application := app.New(db, app.Options{
		DefaultTimezone: cfg.DefaultTimezone,
		Game:            services.DefaultGameSettings(),
	}, logger)

	cleanup := func() {
		_ = db.Close()
	}
	return application, cleanup, nil
}
