package setup

import (
	"log/slog"
	"time"

	"neuro-sync/config"
	"neuro-sync/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RateLimitPerMinute bounds requests per client IP. Health probes are exempt.
const RateLimitPerMinute = 200

// ApplyMiddleware applies all global middleware to the Fiber app
func ApplyMiddleware(app *fiber.App, cfg *config.Config, logger *slog.Logger) {
	app.Use(
		recover.New(),
		middleware.StructuredLogger(logger),
		middleware.Security(cfg.IsProduction()),
		cors.New(cors.Config{
			AllowOrigins:  config.GetEnv("CORS_ORIGINS", "*"),
			AllowMethods:  "GET,POST,OPTIONS",
			AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
			ExposeHeaders: "X-Request-ID",
			MaxAge:        86400,
		}),
		limiter.New(limiter.Config{
			Max:        RateLimitPerMinute,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return c.Path() == "/health"
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Rate limit exceeded",
				})
			},
		}),
	)
}
