package handlers

import (
	"neuro-sync/app"

	"github.com/gofiber/fiber/v2"
)

func CompleteTask(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.Progress.CompleteTask(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "Failed to complete task", err)
		}
		return success(c, fiber.Map{"result": result})
	}
}

// CompleteHabit records today's completion for the habit
func CompleteHabit(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.Progress.RecordHabit(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "Failed to record habit", err)
		}
		return success(c, fiber.Map{"result": result})
	}
}

func UnlockAchievement(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := a.Progress.UnlockAchievement(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "Failed to unlock achievement", err)
		}
		return success(c, fiber.Map{"result": result})
	}
}

func CompleteChallenge(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		points, err := a.Progress.CompleteChallenge(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "Failed to complete challenge", err)
		}
		return created(c, fiber.Map{"xp_awarded": points})
	}
}
