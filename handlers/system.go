package handlers

import (
	"neuro-sync/app"

	"github.com/gofiber/fiber/v2"
)

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// DatabaseInfo reports the store location, size and schema version
func DatabaseInfo(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		info, err := a.DB.Info(c.UserContext())
		if err != nil {
			return failure(c, "Failed to read database info", err)
		}

		response := fiber.Map{"database": info}
		if last, ok, err := a.Streaks.LastReconciled(c.UserContext()); err == nil && ok {
			response["last_reconciled"] = last
		}
		return success(c, response)
	}
}
