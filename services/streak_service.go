package services

import (
	"context"
	"log/slog"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"
)

// LastReconcileKey is the app_state key holding the last reconciliation time.
const LastReconcileKey = "streaks.last_reconciled"

type ReconcileResult struct {
	Checked int `json:"checked"`
	Reset   int `json:"reset"`
	Failed  int `json:"failed"`
}

// StreakService resets streaks whose habit went a full period without a completion.
type StreakService struct {
	tx     Transactor
	stores Stores
	logger *slog.Logger
}

func NewStreakService(tx Transactor, stores Stores, logger *slog.Logger) *StreakService {
	return &StreakService{tx: tx, stores: stores, logger: logger}
}

// Reconcile checks every active habit with a running streak. Each reset
// commits on its own; a failed habit is logged and counted and the pass
// continues.
func (ss *StreakService) Reconcile(ctx context.Context, now time.Time) (*ReconcileResult, error) {
	habits, err := ss.stores.Habits.List(ctx, database.HabitFilter{ActiveOnly: true})
	if err := partial(ss.logger, "reconcile habits", err); err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	locations := make(map[string]*time.Location)
	for _, habit := range habits {
		if habit.CurrentStreak == 0 || habit.LastCompleted == nil {
			continue
		}
		result.Checked++

		loc, err := ss.location(ctx, locations, habit.UserID)
		if err != nil {
			ss.logger.Error("failed to load habit owner", "habit_id", habit.ID, "user_id", habit.UserID, "error", err)
			result.Failed++
			continue
		}
		if !StreakExpired(habit.Frequency, *habit.LastCompleted, now, loc) {
			continue
		}

		reset, err := ss.breakIfExpired(ctx, habit.ID, now, loc)
		if err != nil {
			ss.logger.Error("failed to reset streak", "habit_id", habit.ID, "error", err)
			result.Failed++
			continue
		}
		if !reset {
			ss.logger.Debug("streak completed during reconciliation", "habit_id", habit.ID)
			continue
		}
		result.Reset++
		ss.logger.Debug("streak reset", "habit_id", habit.ID, "user_id", habit.UserID)
	}

	if err := ss.stores.AppState.Set(ctx, LastReconcileKey, models.FormatTime(now)); err != nil {
		return result, err
	}
	return result, nil
}

// breakIfExpired re-reads the habit inside the transaction and resets it only
// if the stored copy is still expired. A completion recorded after the pass
// listed its habits is kept.
func (ss *StreakService) breakIfExpired(ctx context.Context, habitID string, now time.Time, loc *time.Location) (bool, error) {
	reset := false
	err := ss.tx.InTx(ctx, func(ctx context.Context) error {
		habit, err := ss.stores.Habits.Get(ctx, habitID)
		if err != nil || habit == nil {
			return err
		}
		if !habit.IsActive || habit.CurrentStreak == 0 || habit.LastCompleted == nil ||
			!StreakExpired(habit.Frequency, *habit.LastCompleted, now, loc) {
			return nil
		}
		habit.BreakStreak(now)
		if _, err := ss.stores.Habits.Update(ctx, habit); err != nil {
			return err
		}
		reset = true
		return nil
	})
	return reset, err
}

// LastReconciled returns when Reconcile last completed.
func (ss *StreakService) LastReconciled(ctx context.Context) (time.Time, bool, error) {
	raw, ok, err := ss.stores.AppState.Get(ctx, LastReconcileKey)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := models.ParseTime(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func (ss *StreakService) location(ctx context.Context, cache map[string]*time.Location, userID string) (*time.Location, error) {
	if loc, ok := cache[userID]; ok {
		return loc, nil
	}
	loc := time.UTC
	user, err := ss.stores.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		loc = user.Location()
	}
	cache[userID] = loc
	return loc, nil
}

// StreakExpired reports whether a habit last completed at last has missed a
// whole period by now. The period following the completion day is still in
// time; the streak expires once the calendar day after that period begins.
// Custom frequencies never expire.
func StreakExpired(frequency models.HabitFrequency, last, now time.Time, loc *time.Location) bool {
	day := startOfDay(last.In(loc))
	var deadline time.Time
	switch frequency {
	case models.HabitFrequencyDaily:
		deadline = day.AddDate(0, 0, 2)
	case models.HabitFrequencyWeekly:
		deadline = day.AddDate(0, 0, 8)
	case models.HabitFrequencyMonthly:
		deadline = day.AddDate(0, 1, 1)
	case models.HabitFrequencyQuarterly:
		deadline = day.AddDate(0, 3, 1)
	default:
		return false
	}
	return !now.In(loc).Before(deadline)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
