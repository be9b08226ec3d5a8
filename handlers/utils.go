package handlers

import (
	"errors"
	"log/slog"

	"neuro-sync/database"
	"neuro-sync/services"
	"neuro-sync/validator"

	"github.com/gofiber/fiber/v2"
)

func success(c *fiber.Ctx, data fiber.Map) error {
	return c.JSON(data)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func validationError(c *fiber.Ctx, errs validator.ValidationErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": errs,
	})
}

func serverErrorWithDetails(c *fiber.Ctx, message string, err error) error {
	requestID := ""
	if id, ok := c.Locals("requestID").(string); ok {
		requestID = id
	}

	slog.Error("server error",
		"request_id", requestID,
		"method", c.Method(),
		"path", c.Path(),
		"message", message,
		"error", err,
	)

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": message})
}

var (
	notFoundErrors = []error{
		services.ErrUserNotFound,
		services.ErrTaskNotFound,
		services.ErrHabitNotFound,
		services.ErrAchievementNotFound,
		database.ErrNotFound,
	}
	conflictErrors = []error{
		services.ErrEmailTaken,
		services.ErrHabitInactive,
		database.ErrDuplicateKey,
	}
)

// ErrorStatus maps a domain error onto an HTTP status and the message safe to
// show a client. Unrecognised errors are a 500 with an empty message.
func ErrorStatus(err error) (int, string) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return fiber.StatusNotFound, target.Error()
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return fiber.StatusConflict, target.Error()
		}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest, "Validation failed"
	}
	if errors.Is(err, database.ErrConnectionTimeout) {
		return fiber.StatusServiceUnavailable, "Database busy, retry later"
	}
	return fiber.StatusInternalServerError, ""
}

// failure writes the mapped response for err; anything unrecognised is a 500
// carrying message.
func failure(c *fiber.Ctx, message string, err error) error {
	status, public := ErrorStatus(err)
	switch status {
	case fiber.StatusInternalServerError:
		return serverErrorWithDetails(c, message, err)
	case fiber.StatusBadRequest:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return validationError(c, verrs)
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": public})
}

// skippedRows returns how many rows a list call skipped, or err when the
// failure was something else.
func skippedRows(err error) (int, error) {
	var skipped database.RowErrors
	if errors.As(err, &skipped) {
		return len(skipped), nil
	}
	return 0, err
}
