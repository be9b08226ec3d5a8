package handlers

import (
	"neuro-sync/app"
	"neuro-sync/database"
	"neuro-sync/models"

	"github.com/gofiber/fiber/v2"
)

type registerUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

// RegisterUser creates a user
func RegisterUser(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerUserRequest
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}

		user, err := a.Users.Register(c.UserContext(), req.Name, req.Email, req.Timezone)
		if err != nil {
			return failure(c, "Failed to register user", err)
		}

		return created(c, fiber.Map{"user": user})
	}
}

// GetUserXP returns the user's ledger total and entry count
func GetUserXP(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Params("id")
		if _, err := a.Users.Get(c.UserContext(), userID); err != nil {
			return failure(c, "Failed to fetch user", err)
		}

		total, err := a.Progress.TotalXP(c.UserContext(), userID)
		if err != nil {
			return failure(c, "Failed to sum XP", err)
		}

		entries, err := a.Repo.XP.List(c.UserContext(), database.XPFilter{UserID: userID})
		skipped, err := skippedRows(err)
		if err != nil {
			return failure(c, "Failed to list XP entries", err)
		}

		return success(c, fiber.Map{
			"user_id":  userID,
			"total_xp": total,
			"entries":  len(entries) + skipped,
		})
	}
}

// GetUserTasks lists the user's tasks, optionally filtered by ?status=
func GetUserTasks(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := database.TaskFilter{UserID: c.Params("id")}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseTaskStatus(raw)
			if err != nil {
				return badRequest(c, "Unknown task status")
			}
			filter.Status = status
		}

		tasks, err := a.Repo.Tasks.List(c.UserContext(), filter)
		skipped, err := skippedRows(err)
		if err != nil {
			return failure(c, "Failed to list tasks", err)
		}

		return success(c, fiber.Map{"tasks": tasks, "skipped": skipped})
	}
}

// GetUserSummary returns the user's progress snapshot
func GetUserSummary(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := a.Progress.Summary(c.UserContext(), c.Params("id"))
		if err != nil {
			return failure(c, "Failed to build summary", err)
		}
		return success(c, fiber.Map{"summary": summary})
	}
}
