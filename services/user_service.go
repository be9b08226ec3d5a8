package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"
	"neuro-sync/validator"
)

// UserService handles registration and activity tracking
type UserService struct {
	users           UserRepository
	validate        *validator.Validator
	defaultTimezone string
	logger          *slog.Logger
	now             func() time.Time
}

func NewUserService(users UserRepository, validate *validator.Validator, defaultTimezone string, logger *slog.Logger) *UserService {
	return &UserService{
		users:           users,
		validate:        validate,
		defaultTimezone: defaultTimezone,
		logger:          logger,
		now:             models.Now,
	}
}

// Register creates a user. An empty timezone uses the service default.
func (us *UserService) Register(ctx context.Context, name, email, timezone string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if timezone == "" {
		timezone = us.defaultTimezone
	}

	user := models.NewUser(strings.TrimSpace(name), email, timezone)
	if err := us.validate.Validate(user); err != nil {
		return nil, err
	}

	existing, err := us.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	if _, err := us.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	us.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (us *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	user, err := us.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Touch records activity now. last_active never moves backwards; the
// comparison happens in the store so overlapping touches are safe.
func (us *UserService) Touch(ctx context.Context, userID string) (*models.User, error) {
	if err := us.users.TouchActive(ctx, userID, us.now()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return us.Get(ctx, userID)
}
