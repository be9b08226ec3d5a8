package setup

import (
	"context"
	"log/slog"

	"neuro-sync/app"
	"neuro-sync/config"
	"neuro-sync/database"
	"neuro-sync/reconcile"
	"neuro-sync/services"
)

// InitDatabase opens the store and runs migrations
func InitDatabase(ctx context.Context, settings database.Settings, logger *slog.Logger) (*database.DB, error) {
	db, err := database.New(settings)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	version, err := db.CurrentVersion(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "path", settings.Path, "mode", settings.Mode, "schema_version", version)
	return db, nil
}

// InitApp initializes the application with all dependencies
func InitApp(db *database.DB, cfg *config.Config, logger *slog.Logger) *app.App {
	application := app.New(db, app.Options{
		DefaultTimezone: cfg.DefaultTimezone,
		Game:            services.DefaultGameSettings(),
	}, logger)

	application.Worker = reconcile.NewWorker(application.Streaks, cfg.ReconcileInterval, logger)
	application.Worker.Start()
	logger.Info("reconciliation worker started", "interval", cfg.ReconcileInterval)

	return application
}

// Shutdown performs graceful shutdown of all services
func Shutdown(worker *reconcile.Worker, db *database.DB, logger *slog.Logger) {
	logger.Info("shutting down services...")

	if worker != nil {
		worker.Stop()
		logger.Info("reconciliation worker stopped")
	}

	if db != nil {
		db.Close()
		logger.Info("database closed")
	}
}
