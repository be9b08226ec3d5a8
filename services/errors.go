package services

import "errors"

// Common service-level errors
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")

	// Progress errors
	ErrTaskNotFound        = errors.New("task not found")
	ErrHabitNotFound       = errors.New("habit not found")
	ErrHabitInactive       = errors.New("habit is not active")
	ErrAchievementNotFound = errors.New("achievement not found")
)
