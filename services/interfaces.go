package services

import (
	"context"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"
)

// Transactor runs fn in one transaction. Repository calls made with the
// context passed to fn join that transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	TouchActive(ctx context.Context, id string, at time.Time) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Get(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	List(ctx context.Context, f database.TaskFilter) ([]*models.Task, error)
	ListOverdue(ctx context.Context, userID string, now time.Time) ([]*models.Task, error)
}

// HabitRepository defines the interface for habit data access
type HabitRepository interface {
	Get(ctx context.Context, id string) (*models.Habit, error)
	Update(ctx context.Context, habit *models.Habit) (*models.Habit, error)
	List(ctx context.Context, f database.HabitFilter) ([]*models.Habit, error)
}

// AchievementRepository defines the interface for achievement data access
type AchievementRepository interface {
	Get(ctx context.Context, id string) (*models.Achievement, error)
	Update(ctx context.Context, a *models.Achievement) (*models.Achievement, error)
	List(ctx context.Context, f database.AchievementFilter) ([]*models.Achievement, error)
}

// XPLedger is the append-only XP store
type XPLedger interface {
	Append(ctx context.Context, entry *models.XPEntry) (*models.XPEntry, error)
	TotalForUser(ctx context.Context, userID string) (int, error)
}

// StateStore keeps process-wide key/value bookkeeping
type StateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Stores bundles the repositories the services depend on.
type Stores struct {
	Users        UserRepository
	Tasks        TaskRepository
	Habits       HabitRepository
	Achievements AchievementRepository
	XP           XPLedger
	AppState     StateStore
}

// StoresFrom adapts the concrete repository aggregate.
func StoresFrom(repo *database.Repository) Stores {
	return Stores{
		Users:        repo.Users,
		Tasks:        repo.Tasks,
		Habits:       repo.Habits,
		Achievements: repo.Achievements,
		XP:           repo.XP,
		AppState:     repo.AppState,
	}
}
