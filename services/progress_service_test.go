package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"neuro-sync/database"
	"neuro-sync/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestProgressService(m *mockStores) (*ProgressService, *passthroughTx) {
	tx := &passthroughTx{}
	ps := NewProgressService(tx, m.stores(), DefaultGameSettings(), testLogger())
	ps.now = func() time.Time { return fixedNow }
	return ps, tx
}

func TestGameSettings_StreakBonus(t *testing.T) {
	g := DefaultGameSettings()

	assert.Equal(t, 0, g.streakBonus(0))
	assert.Equal(t, 0, g.streakBonus(6))
	assert.Equal(t, 10, g.streakBonus(7))
	assert.Equal(t, 20, g.streakBonus(14))
	assert.Equal(t, 0, GameSettings{HabitCompletionXP: 5}.streakBonus(7), "no milestone configured")
}

func TestProgressService_CompleteTask(t *testing.T) {
	ctx := context.Background()

	t.Run("awards task XP", func(t *testing.T) {
		m := newMockStores()
		ps, tx := newTestProgressService(m)

		task := models.NewTask("u1", "Write report")
		task.CreatedAt = fixedNow.Add(-time.Hour)
		task.UpdatedAt = task.CreatedAt

		m.tasks.On("Get", mock.Anything, task.ID).Return(task, nil)
		m.tasks.On("Update", mock.Anything, task).Return(task, nil)
		m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceTaskCompletion, 50)).Return(nil, nil)

		result, err := ps.CompleteTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, result.XPAwarded)
		assert.False(t, result.AlreadyCompleted)
		assert.Equal(t, models.TaskStatusCompleted, result.Task.Status)
		assert.Equal(t, fixedNow, *result.Task.CompletedAt)
		assert.Equal(t, 1, tx.calls)

		m.tasks.AssertExpectations(t)
		m.xp.AssertExpectations(t)
	})

	t.Run("already completed awards nothing", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)

		task := models.NewTask("u1", "Done already")
		task.CompleteAt(task.CreatedAt)
		m.tasks.On("Get", mock.Anything, task.ID).Return(task, nil)

		result, err := ps.CompleteTask(ctx, task.ID)
		require.NoError(t, err)
		assert.True(t, result.AlreadyCompleted)
		assert.Zero(t, result.XPAwarded)

		m.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.xp.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("unknown task", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)
		m.tasks.On("Get", mock.Anything, "missing").Return(nil, nil)

		_, err := ps.CompleteTask(ctx, "missing")
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("update failure skips ledger", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)

		task := models.NewTask("u1", "Fails to save")
		m.tasks.On("Get", mock.Anything, task.ID).Return(task, nil)
		m.tasks.On("Update", mock.Anything, task).Return(nil, database.ErrNotFound)

		_, err := ps.CompleteTask(ctx, task.ID)
		assert.ErrorIs(t, err, database.ErrNotFound)
		m.xp.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestProgressService_RecordHabit(t *testing.T) {
	ctx := context.Background()

	t.Run("plain completion", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)

		yesterday := fixedNow.AddDate(0, 0, -1)
		habit := models.NewHabit("u1", "Stretch", models.HabitFrequencyDaily)
		habit.CurrentStreak, habit.BestStreak = 3, 3
		habit.LastCompleted = &yesterday

		m.habits.On("Get", mock.Anything, habit.ID).Return(habit, nil)
		m.users.On("Get", mock.Anything, "u1").Return(models.NewUser("U", "u@x.com", "UTC"), nil)
		m.habits.On("Update", mock.Anything, habit).Return(habit, nil)
		m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceHabitCompletion, 5)).Return(nil, nil)

		result, err := ps.RecordHabit(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, result.Habit.CurrentStreak)
		assert.Equal(t, 4, result.Habit.BestStreak)
		assert.Equal(t, 5, result.XPAwarded)
		assert.Zero(t, result.StreakBonus)
		m.xp.AssertNumberOfCalls(t, "Append", 1)
	})

	t.Run("milestone adds streak bonus", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)

		yesterday := fixedNow.AddDate(0, 0, -1)
		habit := models.NewHabit("u1", "Run", models.HabitFrequencyDaily)
		habit.CurrentStreak, habit.BestStreak = 6, 6
		habit.LastCompleted = &yesterday

		m.habits.On("Get", mock.Anything, habit.ID).Return(habit, nil)
		m.users.On("Get", mock.Anything, "u1").Return(nil, nil)
		m.habits.On("Update", mock.Anything, habit).Return(habit, nil)
		m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceHabitCompletion, 5)).Return(nil, nil).Once()
		m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceStreakBonus, 10)).Return(nil, nil).Once()

		result, err := ps.RecordHabit(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, result.Habit.CurrentStreak)
		assert.Equal(t, 10, result.StreakBonus)
		assert.Equal(t, 15, result.XPAwarded)
		m.xp.AssertExpectations(t)
	})

	t.Run("same day in owner timezone is a no-op", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)
		ps.now = func() time.Time { return time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC) }

		// 16:00 UTC and 20:00 UTC on June 9 are both June 10 in Tokyo.
		earlier := time.Date(2024, 6, 9, 16, 0, 0, 0, time.UTC)
		habit := models.NewHabit("u1", "Journal", models.HabitFrequencyDaily)
		habit.CurrentStreak, habit.BestStreak = 2, 2
		habit.LastCompleted = &earlier

		m.habits.On("Get", mock.Anything, habit.ID).Return(habit, nil)
		m.users.On("Get", mock.Anything, "u1").Return(models.NewUser("U", "u@x.com", "Asia/Tokyo"), nil)

		result, err := ps.RecordHabit(ctx, habit.ID)
		require.NoError(t, err)
		assert.True(t, result.AlreadyRecorded)
		assert.Equal(t, 2, result.Habit.CurrentStreak)
		m.habits.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		m.xp.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("inactive habit", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)

		habit := models.NewHabit("u1", "Retired", models.HabitFrequencyWeekly)
		habit.IsActive = false
		m.habits.On("Get", mock.Anything, habit.ID).Return(habit, nil)

		_, err := ps.RecordHabit(ctx, habit.ID)
		assert.ErrorIs(t, err, ErrHabitInactive)
	})

	t.Run("unknown habit", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)
		m.habits.On("Get", mock.Anything, "missing").Return(nil, nil)

		_, err := ps.RecordHabit(ctx, "missing")
		assert.ErrorIs(t, err, ErrHabitNotFound)
	})
}

func TestProgressService_UnlockAchievement(t *testing.T) {
	ctx := context.Background()
	m := newMockStores()
	ps, _ := newTestProgressService(m)

	a := models.NewAchievement("u1", "First Steps", 100, "complete_tasks:1")
	m.achievements.On("Get", mock.Anything, a.ID).Return(a, nil)
	m.achievements.On("Update", mock.Anything, a).Return(a, nil).Once()
	m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceAchievementUnlocked, 100)).Return(nil, nil).Once()

	result, err := ps.UnlockAchievement(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, result.Achievement.IsUnlocked)
	assert.Equal(t, fixedNow, *result.Achievement.DateEarned)
	assert.Equal(t, 100, result.XPAwarded)

	again, err := ps.UnlockAchievement(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyUnlocked)
	assert.Zero(t, again.XPAwarded)

	m.achievements.AssertNumberOfCalls(t, "Update", 1)
	m.xp.AssertNumberOfCalls(t, "Append", 1)
}

func TestProgressService_CompleteChallenge(t *testing.T) {
	ctx := context.Background()

	t.Run("awards challenge XP", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)
		m.users.On("Get", mock.Anything, "u1").Return(models.NewUser("U", "u@x.com", "UTC"), nil)
		m.xp.On("Append", mock.Anything, xpEntry(models.XPSourceChallengeCompleted, 500)).Return(nil, nil)

		points, err := ps.CompleteChallenge(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 500, points)
	})

	t.Run("unknown user", func(t *testing.T) {
		m := newMockStores()
		ps, _ := newTestProgressService(m)
		m.users.On("Get", mock.Anything, "ghost").Return(nil, nil)

		_, err := ps.CompleteChallenge(ctx, "ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestProgressService_Summary(t *testing.T) {
	ctx := context.Background()
	m := newMockStores()
	ps, _ := newTestProgressService(m)

	past := fixedNow.Add(-time.Hour)
	open := models.NewTask("u1", "Open")
	late := models.NewTask("u1", "Late")
	late.DueDate = &past
	done := models.NewTask("u1", "Done")
	done.CompleteAt(done.CreatedAt)

	habit := models.NewHabit("u1", "Read", models.HabitFrequencyDaily)
	habit.BestStreak = 12

	skipped := database.RowErrors{&models.SerializationError{Table: models.TableTasks, ID: "bad", Column: "status", Err: models.ErrInvalidTag}}

	m.users.On("Get", mock.Anything, "u1").Return(models.NewUser("U", "u@x.com", "UTC"), nil)
	m.xp.On("TotalForUser", mock.Anything, "u1").Return(35, nil)
	m.tasks.On("List", mock.Anything, database.TaskFilter{UserID: "u1"}).Return([]*models.Task{open, late, done}, skipped)
	m.habits.On("List", mock.Anything, database.HabitFilter{UserID: "u1", ActiveOnly: true}).Return([]*models.Habit{habit}, nil)
	m.achievements.On("List", mock.Anything, mock.AnythingOfType("database.AchievementFilter")).Return([]*models.Achievement{}, nil)

	summary, err := ps.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 35, summary.TotalXP)
	assert.Equal(t, 2, summary.OpenTasks)
	assert.Equal(t, 1, summary.CompletedTasks)
	assert.Equal(t, 1, summary.OverdueTasks)
	assert.Equal(t, 1, summary.ActiveHabits)
	assert.Equal(t, 12, summary.LongestStreak)
	assert.Zero(t, summary.UnlockedAchievements)
}

func TestProgressService_SummaryPropagatesStoreErrors(t *testing.T) {
	m := newMockStores()
	ps, _ := newTestProgressService(m)

	boom := errors.New("disk on fire")
	m.users.On("Get", mock.Anything, "u1").Return(models.NewUser("U", "u@x.com", "UTC"), nil)
	m.xp.On("TotalForUser", mock.Anything, "u1").Return(0, nil)
	m.tasks.On("List", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := ps.Summary(context.Background(), "u1")
	assert.ErrorIs(t, err, boom)
}
