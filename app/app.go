package app

import (
	"log/slog"

	"neuro-sync/database"
	"neuro-sync/reconcile"
	"neuro-sync/services"
	"neuro-sync/validator"
)

// App holds all application dependencies
// This struct is the central point for dependency injection
type App struct {
	DB        *database.DB
	Repo      *database.Repository
	Users     *services.UserService
	Progress  *services.ProgressService
	Streaks   *services.StreakService
	Worker    *reconcile.Worker
	Validator *validator.Validator
	Logger    *slog.Logger
}

// Options are the knobs New needs beyond the store itself
type Options struct {
	DefaultTimezone string
	Game            services.GameSettings
}

// New wires the services over db. The reconciliation worker is attached by
// the caller once it knows the interval; it may stay nil.
func New(db *database.DB, opts Options, logger *slog.Logger) *App {
	repo := database.NewRepository(db)
	stores := services.StoresFrom(repo)
	v := validator.New()

	return &App{
		DB:        db,
		Repo:      repo,
		Users:     services.NewUserService(repo.Users, v, opts.DefaultTimezone, logger),
		Progress:  services.NewProgressService(db, stores, opts.Game, logger),
		Streaks:   services.NewStreakService(db, stores, logger),
		Validator: v,
		Logger:    logger,
	}
}
