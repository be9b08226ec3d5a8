package models

import (
	"fmt"
	"slices"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
	TaskStatusPaused     TaskStatus = "paused"
)

var taskStatuses = []TaskStatus{
	TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled, TaskStatusPaused,
}

func (s TaskStatus) IsValid() bool { return slices.Contains(taskStatuses, s) }

func ParseTaskStatus(s string) (TaskStatus, error) { return parseTag("task status", s, taskStatuses) }

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

var taskPriorities = []TaskPriority{
	TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent,
}

func (p TaskPriority) IsValid() bool { return slices.Contains(taskPriorities, p) }

func ParseTaskPriority(s string) (TaskPriority, error) {
	return parseTag("task priority", s, taskPriorities)
}

type HabitFrequency string

const (
	HabitFrequencyDaily     HabitFrequency = "daily"
	HabitFrequencyWeekly    HabitFrequency = "weekly"
	HabitFrequencyMonthly   HabitFrequency = "monthly"
	HabitFrequencyQuarterly HabitFrequency = "quarterly"
	HabitFrequencyCustom    HabitFrequency = "custom"
)

var habitFrequencies = []HabitFrequency{
	HabitFrequencyDaily, HabitFrequencyWeekly, HabitFrequencyMonthly, HabitFrequencyQuarterly, HabitFrequencyCustom,
}

func (f HabitFrequency) IsValid() bool { return slices.Contains(habitFrequencies, f) }

func ParseHabitFrequency(s string) (HabitFrequency, error) {
	return parseTag("habit frequency", s, habitFrequencies)
}

// FinanceCategory is authoritative for income/expense classification.
type FinanceCategory string

const (
	FinanceCategoryIncome        FinanceCategory = "income"
	FinanceCategoryExpense       FinanceCategory = "expense"
	FinanceCategoryFood          FinanceCategory = "food"
	FinanceCategoryInvestment    FinanceCategory = "investment"
	FinanceCategoryEntertainment FinanceCategory = "entertainment"
	FinanceCategoryEducation     FinanceCategory = "education"
	FinanceCategoryHealth        FinanceCategory = "health"
	FinanceCategoryTransport     FinanceCategory = "transport"
	FinanceCategoryUtilities     FinanceCategory = "utilities"
	FinanceCategoryMiscellaneous FinanceCategory = "miscellaneous"
	FinanceCategorySavings       FinanceCategory = "savings"
	FinanceCategoryDebt          FinanceCategory = "debt"
	FinanceCategoryOther         FinanceCategory = "other"
)

var financeCategories = []FinanceCategory{
	FinanceCategoryIncome, FinanceCategoryExpense, FinanceCategoryFood, FinanceCategoryInvestment,
	FinanceCategoryEntertainment, FinanceCategoryEducation, FinanceCategoryHealth, FinanceCategoryTransport,
	FinanceCategoryUtilities, FinanceCategoryMiscellaneous, FinanceCategorySavings, FinanceCategoryDebt,
	FinanceCategoryOther,
}

func (c FinanceCategory) IsValid() bool { return slices.Contains(financeCategories, c) }

func ParseFinanceCategory(s string) (FinanceCategory, error) {
	return parseTag("finance category", s, financeCategories)
}

type XPSource string

const (
	XPSourceTaskCompletion      XPSource = "task_completion"
	XPSourceHabitCompletion     XPSource = "habit_completion"
	XPSourceAchievementUnlocked XPSource = "achievement_unlocked"
	XPSourceChallengeCompleted  XPSource = "challenge_completed"
	XPSourceStreakBonus         XPSource = "streak_bonus"
)

var xpSources = []XPSource{
	XPSourceTaskCompletion, XPSourceHabitCompletion, XPSourceAchievementUnlocked,
	XPSourceChallengeCompleted, XPSourceStreakBonus,
}

func (s XPSource) IsValid() bool { return slices.Contains(xpSources, s) }

func ParseXPSource(s string) (XPSource, error) { return parseTag("xp source", s, xpSources) }

func parseTag[T ~string](kind, s string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s %q", ErrInvalidTag, kind, s)
}
