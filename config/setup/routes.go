package setup

import (
	"neuro-sync/app"
	"neuro-sync/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(fiberApp *fiber.App, application *app.App) {
	fiberApp.Get("/health", handlers.Health)

	api := fiberApp.Group("/api")

	api.Get("/db/info", handlers.DatabaseInfo(application))

	api.Post("/users", handlers.RegisterUser(application))
	api.Get("/users/:id/xp", handlers.GetUserXP(application))
	api.Get("/users/:id/tasks", handlers.GetUserTasks(application))
	api.Get("/users/:id/summary", handlers.GetUserSummary(application))
	api.Post("/users/:id/challenges", handlers.CompleteChallenge(application))

	api.Post("/tasks/:id/complete", handlers.CompleteTask(application))
	api.Post("/habits/:id/complete", handlers.CompleteHabit(application))
	api.Post("/achievements/:id/unlock", handlers.UnlockAchievement(application))
}
