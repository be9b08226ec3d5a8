package models

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id" validate:"required"`
	Title         string         `json:"title" validate:"required,min=3,max=100"`
	Description   string         `json:"description" validate:"max=500"`
	Frequency     HabitFrequency `json:"frequency" validate:"enum"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	TargetStreak  int            `json:"target_streak" validate:"gte=0"`
	CurrentStreak int            `json:"current_streak" validate:"gte=0"`
	BestStreak    int            `json:"best_streak" validate:"gte=0"`
	IsActive      bool           `json:"is_active"`
	LastCompleted *time.Time     `json:"last_completed,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// NewHabit returns an active habit starting today with an empty streak.
func NewHabit(userID, title string, frequency HabitFrequency) *Habit {
	now := Now()
	return &Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Frequency: frequency,
		StartDate: now,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordCompletion records a completion for today. See RecordCompletionAt.
func (h *Habit) RecordCompletion() bool {
	return h.RecordCompletionAt(Now())
}

// RecordCompletionAt records a completion on the calendar day of now, in
// now's location. It reports false and changes nothing when that day already
// has a completion. Missed days are not handled here; streak breaks are
// applied by the reconciliation pass.
func (h *Habit) RecordCompletionAt(now time.Time) bool {
	if h.CompletedOn(now) {
		return false
	}
	h.CurrentStreak++
	if h.CurrentStreak > h.BestStreak {
		h.BestStreak = h.CurrentStreak
	}
	stamp := now.UTC()
	h.LastCompleted = &stamp
	if stamp.After(h.UpdatedAt) {
		h.UpdatedAt = stamp
	}
	return true
}

// CompletedOn reports whether the last completion falls on day's calendar date
// in day's location.
func (h *Habit) CompletedOn(day time.Time) bool {
	if h.LastCompleted == nil {
		return false
	}
	return sameDay(h.LastCompleted.In(day.Location()), day)
}

// BreakStreak resets the current streak. BestStreak keeps its historical maximum.
func (h *Habit) BreakStreak(now time.Time) {
	if h.CurrentStreak == 0 {
		return
	}
	h.CurrentStreak = 0
	if now = now.UTC(); now.After(h.UpdatedAt) {
		h.UpdatedAt = now
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (h *Habit) ToRow() (Row, error) {
	frequency, err := encodeTag(TableHabits, h.ID, "frequency", h.Frequency)
	if err != nil {
		return nil, err
	}
	return Row{
		"id":             h.ID,
		"user_id":        h.UserID,
		"title":          h.Title,
		"description":    h.Description,
		"frequency":      frequency,
		"start_date":     FormatTime(h.StartDate),
		"end_date":       timeValue(h.EndDate),
		"target_streak":  int64(h.TargetStreak),
		"current_streak": int64(h.CurrentStreak),
		"best_streak":    int64(h.BestStreak),
		"is_active":      h.IsActive,
		"last_completed": timeValue(h.LastCompleted),
		"created_at":     FormatTime(h.CreatedAt),
		"updated_at":     FormatTime(h.UpdatedAt),
	}, nil
}

func HabitFromRow(row Row) (*Habit, error) {
	d := newRowDecoder(TableHabits, row)
	h := &Habit{
		ID:            d.id,
		UserID:        d.str("user_id"),
		Title:         d.str("title"),
		Description:   d.str("description"),
		Frequency:     decodeTag(d, "frequency", ParseHabitFrequency),
		StartDate:     d.time("start_date"),
		EndDate:       d.optTime("end_date"),
		TargetStreak:  d.counter("target_streak"),
		CurrentStreak: d.counter("current_streak"),
		BestStreak:    d.counter("best_streak"),
		IsActive:      d.bool("is_active"),
		LastCompleted: d.optTime("last_completed"),
		CreatedAt:     d.time("created_at"),
		UpdatedAt:     d.time("updated_at"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return h, nil
}
