package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"
)

// GameSettings are the XP rewards for progress events.
type GameSettings struct {
	TaskCompletionXP      int
	HabitCompletionXP     int
	StreakBonusMultiplier int
	StreakMilestone       int // streak length that earns a bonus
	ChallengeCompletionXP int
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		TaskCompletionXP:      50,
		HabitCompletionXP:     5,
		StreakBonusMultiplier: 2,
		StreakMilestone:       7,
		ChallengeCompletionXP: 500,
	}
}

// streakBonus returns the bonus earned when a habit reaches streak, or 0.
func (g GameSettings) streakBonus(streak int) int {
	if g.StreakMilestone <= 0 || streak == 0 || streak%g.StreakMilestone != 0 {
		return 0
	}
	return g.HabitCompletionXP * g.StreakBonusMultiplier * streak / g.StreakMilestone
}

type TaskCompletion struct {
	Task             *models.Task `json:"task"`
	XPAwarded        int          `json:"xp_awarded"`
	AlreadyCompleted bool         `json:"already_completed"`
}

type HabitCompletion struct {
	Habit           *models.Habit `json:"habit"`
	XPAwarded       int           `json:"xp_awarded"`
	StreakBonus     int           `json:"streak_bonus"`
	AlreadyRecorded bool          `json:"already_recorded"`
}

type AchievementUnlock struct {
	Achievement     *models.Achievement `json:"achievement"`
	XPAwarded       int                 `json:"xp_awarded"`
	AlreadyUnlocked bool                `json:"already_unlocked"`
}

// ProgressSummary is a per-user snapshot across the entity families.
type ProgressSummary struct {
	UserID               string `json:"user_id"`
	TotalXP              int    `json:"total_xp"`
	OpenTasks            int    `json:"open_tasks"`
	CompletedTasks       int    `json:"completed_tasks"`
	OverdueTasks         int    `json:"overdue_tasks"`
	ActiveHabits         int    `json:"active_habits"`
	LongestStreak        int    `json:"longest_streak"`
	UnlockedAchievements int    `json:"unlocked_achievements"`
}

// ProgressService applies lifecycle transitions and records the XP they earn.
// Each transition and its ledger entries commit together.
type ProgressService struct {
	tx       Transactor
	stores   Stores
	settings GameSettings
	logger   *slog.Logger
	now      func() time.Time
}

func NewProgressService(tx Transactor, stores Stores, settings GameSettings, logger *slog.Logger) *ProgressService {
	return &ProgressService{
		tx:       tx,
		stores:   stores,
		settings: settings,
		logger:   logger,
		now:      models.Now,
	}
}

// CompleteTask completes the task and awards task XP. Completing an already
// completed task changes nothing and awards nothing.
func (ps *ProgressService) CompleteTask(ctx context.Context, taskID string) (*TaskCompletion, error) {
	var result *TaskCompletion
	err := ps.tx.InTx(ctx, func(ctx context.Context) error {
		task, err := ps.stores.Tasks.Get(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return ErrTaskNotFound
		}
		if task.Status == models.TaskStatusCompleted {
			result = &TaskCompletion{Task: task, AlreadyCompleted: true}
			return nil
		}

		now := ps.now()
		task.CompleteAt(now)
		if _, err := ps.stores.Tasks.Update(ctx, task); err != nil {
			return err
		}
		if err := ps.award(ctx, task.UserID, models.XPSourceTaskCompletion, ps.settings.TaskCompletionXP, now); err != nil {
			return err
		}
		result = &TaskCompletion{Task: task, XPAwarded: ps.settings.TaskCompletionXP}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("complete task %s: %w", taskID, err)
	}

	if !result.AlreadyCompleted {
		ps.logger.Info("task completed", "task_id", taskID, "user_id", result.Task.UserID, "xp", result.XPAwarded)
	}
	return result, nil
}

// RecordHabit records today's completion in the owner's timezone. A second
// completion on the same day is a no-op. Reaching a streak milestone adds a
// streak bonus entry.
func (ps *ProgressService) RecordHabit(ctx context.Context, habitID string) (*HabitCompletion, error) {
	var result *HabitCompletion
	err := ps.tx.InTx(ctx, func(ctx context.Context) error {
		habit, err := ps.stores.Habits.Get(ctx, habitID)
		if err != nil {
			return err
		}
		if habit == nil {
			return ErrHabitNotFound
		}
		if !habit.IsActive {
			return ErrHabitInactive
		}

		loc := time.UTC
		user, err := ps.stores.Users.Get(ctx, habit.UserID)
		if err != nil {
			return err
		}
		if user != nil {
			loc = user.Location()
		}

		now := ps.now()
		if !habit.RecordCompletionAt(now.In(loc)) {
			result = &HabitCompletion{Habit: habit, AlreadyRecorded: true}
			return nil
		}
		if _, err := ps.stores.Habits.Update(ctx, habit); err != nil {
			return err
		}

		result = &HabitCompletion{Habit: habit, XPAwarded: ps.settings.HabitCompletionXP}
		if err := ps.award(ctx, habit.UserID, models.XPSourceHabitCompletion, ps.settings.HabitCompletionXP, now); err != nil {
			return err
		}
		if bonus := ps.settings.streakBonus(habit.CurrentStreak); bonus > 0 {
			if err := ps.award(ctx, habit.UserID, models.XPSourceStreakBonus, bonus, now); err != nil {
				return err
			}
			result.StreakBonus = bonus
			result.XPAwarded += bonus
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record habit %s: %w", habitID, err)
	}

	if !result.AlreadyRecorded {
		ps.logger.Info("habit recorded",
			"habit_id", habitID,
			"user_id", result.Habit.UserID,
			"streak", result.Habit.CurrentStreak,
			"xp", result.XPAwarded,
		)
	}
	return result, nil
}

// UnlockAchievement unlocks the achievement once and awards its points.
func (ps *ProgressService) UnlockAchievement(ctx context.Context, achievementID string) (*AchievementUnlock, error) {
	var result *AchievementUnlock
	err := ps.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := ps.stores.Achievements.Get(ctx, achievementID)
		if err != nil {
			return err
		}
		if a == nil {
			return ErrAchievementNotFound
		}

		now := ps.now()
		if !a.UnlockAt(now) {
			result = &AchievementUnlock{Achievement: a, AlreadyUnlocked: true}
			return nil
		}
		if _, err := ps.stores.Achievements.Update(ctx, a); err != nil {
			return err
		}
		result = &AchievementUnlock{Achievement: a}
		if a.Points > 0 {
			if err := ps.award(ctx, a.UserID, models.XPSourceAchievementUnlocked, a.Points, now); err != nil {
				return err
			}
			result.XPAwarded = a.Points
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unlock achievement %s: %w", achievementID, err)
	}

	if !result.AlreadyUnlocked {
		ps.logger.Info("achievement unlocked", "achievement_id", achievementID, "user_id", result.Achievement.UserID)
	}
	return result, nil
}

// CompleteChallenge awards challenge XP to the user.
func (ps *ProgressService) CompleteChallenge(ctx context.Context, userID string) (int, error) {
	err := ps.tx.InTx(ctx, func(ctx context.Context) error {
		user, err := ps.stores.Users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		return ps.award(ctx, userID, models.XPSourceChallengeCompleted, ps.settings.ChallengeCompletionXP, ps.now())
	})
	if err != nil {
		return 0, fmt.Errorf("complete challenge for %s: %w", userID, err)
	}
	return ps.settings.ChallengeCompletionXP, nil
}

// TotalXP is the sum of the user's ledger entries.
func (ps *ProgressService) TotalXP(ctx context.Context, userID string) (int, error) {
	return ps.stores.XP.TotalForUser(ctx, userID)
}

func (ps *ProgressService) Summary(ctx context.Context, userID string) (*ProgressSummary, error) {
	user, err := ps.stores.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	summary := &ProgressSummary{UserID: userID}
	if summary.TotalXP, err = ps.stores.XP.TotalForUser(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := ps.stores.Tasks.List(ctx, database.TaskFilter{UserID: userID})
	if err := partial(ps.logger, "summary tasks", err); err != nil {
		return nil, err
	}
	now := ps.now()
	for _, t := range tasks {
		switch {
		case t.Status == models.TaskStatusCompleted:
			summary.CompletedTasks++
		case t.Status == models.TaskStatusCancelled:
		default:
			summary.OpenTasks++
		}
		if t.IsOverdueAt(now) {
			summary.OverdueTasks++
		}
	}

	habits, err := ps.stores.Habits.List(ctx, database.HabitFilter{UserID: userID, ActiveOnly: true})
	if err := partial(ps.logger, "summary habits", err); err != nil {
		return nil, err
	}
	summary.ActiveHabits = len(habits)
	for _, h := range habits {
		summary.LongestStreak = max(summary.LongestStreak, h.BestStreak)
	}

	unlocked := true
	achievements, err := ps.stores.Achievements.List(ctx, database.AchievementFilter{UserID: userID, Unlocked: &unlocked})
	if err := partial(ps.logger, "summary achievements", err); err != nil {
		return nil, err
	}
	summary.UnlockedAchievements = len(achievements)

	return summary, nil
}

func (ps *ProgressService) award(ctx context.Context, userID string, source models.XPSource, points int, now time.Time) error {
	entry := models.NewXPEntry(userID, source, points)
	entry.EarnedDate = now
	_, err := ps.stores.XP.Append(ctx, entry)
	return err
}
