package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowRoundTrip(t *testing.T) {
	now := Now()
	later := now.Add(48 * time.Hour)
	desc := "quarterly numbers"
	est := 90

	user := NewUser("Ada", "ada@x.com", "Europe/Berlin")

	fullTask := NewTask(user.ID, "Write report")
	fullTask.Description = &desc
	fullTask.DueDate = &later
	fullTask.EstimatedDuration = &est
	fullTask.Tags = []string{"work"}
	fullTask.Complete()

	habit := NewHabit(user.ID, "Read", HabitFrequencyWeekly)
	habit.EndDate = &later
	habit.RecordCompletionAt(now)

	record := NewFinanceRecord(user.ID, 12.5, FinanceCategoryFood, now)
	record.Description = &desc
	record.Tags = []string{"lunch", "team"}

	locked := NewAchievement(user.ID, "Early Bird", 50, "")
	unlocked := NewAchievement(user.ID, "Night Owl", 75, "")
	unlocked.Unlock()

	t.Run("user", func(t *testing.T) {
		row, err := user.ToRow()
		require.NoError(t, err)
		got, err := UserFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("task with absent optionals", func(t *testing.T) {
		task := NewTask(user.ID, "Plain task")
		row, err := task.ToRow()
		require.NoError(t, err)
		assert.Nil(t, row["due_date"])
		assert.Equal(t, "[]", row["tags"])

		got, err := TaskFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, task, got)
	})

	t.Run("task with every field", func(t *testing.T) {
		row, err := fullTask.ToRow()
		require.NoError(t, err)
		got, err := TaskFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, fullTask, got)
	})

	t.Run("habit", func(t *testing.T) {
		row, err := habit.ToRow()
		require.NoError(t, err)
		got, err := HabitFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, habit, got)
	})

	t.Run("finance", func(t *testing.T) {
		row, err := record.ToRow()
		require.NoError(t, err)
		got, err := FinanceRecordFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, record, got)
	})

	t.Run("xp", func(t *testing.T) {
		entry := NewXPEntry(user.ID, XPSourceHabitCompletion, 5)
		row, err := entry.ToRow()
		require.NoError(t, err)
		got, err := XPEntryFromRow(row)
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("achievements", func(t *testing.T) {
		for _, a := range []*Achievement{locked, unlocked} {
			row, err := a.ToRow()
			require.NoError(t, err)
			got, err := AchievementFromRow(row)
			require.NoError(t, err)
			assert.Equal(t, a, got)
		}
	})
}

func TestTaskCompleteKeepsFirstCompletion(t *testing.T) {
	task := NewTask("u1", "Ship it")
	first := task.CreatedAt.Add(time.Minute)
	task.CompleteAt(first)

	task.CompleteAt(first.Add(time.Hour))
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, first, *task.CompletedAt)
	assert.Equal(t, TaskStatusCompleted, task.Status)
}

func TestTaskCompleteClampsToCreation(t *testing.T) {
	task := NewTask("u1", "Clock skew")
	task.CompleteAt(task.CreatedAt.Add(-time.Hour))
	assert.Equal(t, task.CreatedAt, *task.CompletedAt)
}

func TestTaskSetStatus(t *testing.T) {
	task := NewTask("u1", "Reopen me")
	task.Complete()

	require.NoError(t, task.SetStatus(TaskStatusInProgress, Now()))
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, TaskStatusInProgress, task.Status)

	assert.ErrorIs(t, task.SetStatus("archived", Now()), ErrInvalidTag)
}

func TestTaskInvariantsOnEncode(t *testing.T) {
	task := NewTask("u1", "Broken")
	task.Status = TaskStatusCompleted

	_, err := task.ToRow()
	assert.ErrorIs(t, err, ErrInvalidState)

	task.Status = TaskStatusPending
	task.UpdatedAt = task.CreatedAt.Add(-time.Second)
	_, err = task.ToRow()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTaskIsOverdue(t *testing.T) {
	now := Now()
	past := now.Add(-time.Hour)

	task := NewTask("u1", "Late")
	assert.False(t, task.IsOverdueAt(now), "no due date")

	task.DueDate = &past
	assert.True(t, task.IsOverdueAt(now))

	task.CompleteAt(now)
	assert.False(t, task.IsOverdueAt(now))
}

func TestHabitStreak(t *testing.T) {
	yesterday := time.Date(2024, 6, 9, 21, 0, 0, 0, time.UTC)
	today := yesterday.Add(12 * time.Hour)

	habit := NewHabit("u1", "Stretch", HabitFrequencyDaily)
	habit.CurrentStreak = 3
	habit.BestStreak = 3
	habit.LastCompleted = &yesterday

	assert.True(t, habit.RecordCompletionAt(today))
	assert.Equal(t, 4, habit.CurrentStreak)
	assert.Equal(t, 4, habit.BestStreak)

	assert.False(t, habit.RecordCompletionAt(today.Add(time.Hour)), "same day is a no-op")
	assert.Equal(t, 4, habit.CurrentStreak)
	assert.Equal(t, 4, habit.BestStreak)

	habit.BreakStreak(today.Add(48 * time.Hour))
	assert.Equal(t, 0, habit.CurrentStreak)
	assert.Equal(t, 4, habit.BestStreak)

	assert.True(t, habit.RecordCompletionAt(today.Add(72*time.Hour)))
	assert.Equal(t, 1, habit.CurrentStreak)
	assert.Equal(t, 4, habit.BestStreak)
}

func TestHabitCompletedOnUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 20:00 UTC on June 9 is already June 10 in Tokyo.
	last := time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC)
	habit := NewHabit("u1", "Journal", HabitFrequencyDaily)
	habit.LastCompleted = &last

	assert.True(t, habit.CompletedOn(time.Date(2024, 6, 10, 9, 0, 0, 0, tokyo)))
	assert.False(t, habit.CompletedOn(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)))
}

func TestAchievementUnlockIsOneShot(t *testing.T) {
	a := NewAchievement("u1", "Marathon", 500, "streak:30")
	first := a.CreatedAt.Add(time.Minute)

	assert.True(t, a.UnlockAt(first))
	assert.False(t, a.UnlockAt(first.Add(time.Hour)))
	assert.Equal(t, first, *a.DateEarned)
}

func TestLockedAchievementIgnoresStoredDate(t *testing.T) {
	a := NewAchievement("u1", "Locked", 10, "")
	row, err := a.ToRow()
	require.NoError(t, err)
	row["date_earned"] = FormatTime(Now())

	got, err := AchievementFromRow(row)
	require.NoError(t, err)
	assert.Nil(t, got.DateEarned)
}

func TestFinanceClassification(t *testing.T) {
	income := NewFinanceRecord("u1", 100, FinanceCategoryIncome, Now())
	refund := NewFinanceRecord("u1", -20, FinanceCategoryFood, Now())

	assert.True(t, income.IsIncome())
	assert.False(t, income.IsExpense())
	assert.True(t, refund.IsExpense(), "sign does not change classification")
}

func TestDecodeErrors(t *testing.T) {
	user := NewUser("Ada", "ada@x.com", "UTC")
	row, err := user.ToRow()
	require.NoError(t, err)

	t.Run("naive timestamp", func(t *testing.T) {
		bad := clone(row)
		bad["created_at"] = "2024-01-01T10:00:00"
		_, err := UserFromRow(bad)

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, TableUsers, serr.Table)
		assert.Equal(t, user.ID, serr.ID)
		assert.Equal(t, "created_at", serr.Column)
		assert.ErrorIs(t, err, ErrNaiveTimestamp)
	})

	t.Run("missing column", func(t *testing.T) {
		bad := clone(row)
		delete(bad, "email")
		_, err := UserFromRow(bad)
		assert.ErrorIs(t, err, ErrMissingColumn)
	})

	t.Run("unexpected type", func(t *testing.T) {
		bad := clone(row)
		bad["name"] = int64(7)
		_, err := UserFromRow(bad)
		assert.ErrorIs(t, err, ErrUnexpectedType)
	})

	t.Run("invalid tag", func(t *testing.T) {
		taskRow, err := NewTask("u1", "Tagged").ToRow()
		require.NoError(t, err)
		taskRow["priority"] = "critical"
		_, err = TaskFromRow(taskRow)

		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "priority", serr.Column)
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("negative counter", func(t *testing.T) {
		habitRow, err := NewHabit("u1", "Counted", HabitFrequencyDaily).ToRow()
		require.NoError(t, err)
		habitRow["current_streak"] = int64(-1)
		_, err = HabitFromRow(habitRow)
		assert.ErrorIs(t, err, ErrNegativeCounter)
	})

	t.Run("malformed tags", func(t *testing.T) {
		taskRow, err := NewTask("u1", "Tagged").ToRow()
		require.NoError(t, err)
		taskRow["tags"] = "not json"
		_, err = TaskFromRow(taskRow)
		var serr *SerializationError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "tags", serr.Column)
	})
}

func TestEncodeRejectsInvalidTag(t *testing.T) {
	entry := NewXPEntry("u1", "bribe", 10)
	_, err := entry.ToRow()
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestParseEnums(t *testing.T) {
	status, err := ParseTaskStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, status)

	_, err = ParseHabitFrequency("hourly")
	assert.ErrorIs(t, err, ErrInvalidTag)

	assert.True(t, FinanceCategorySavings.IsValid())
	assert.False(t, XPSource("gift").IsValid())
}

func clone(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
