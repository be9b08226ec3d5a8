package models

import (
	"time"

	"github.com/google/uuid"
)

type Achievement struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id" validate:"required"`
	Title           string     `json:"title" validate:"required,min=3,max=100"`
	Description     string     `json:"description" validate:"max=500"`
	Points          int        `json:"points" validate:"gte=0"`
	UnlockCondition string     `json:"unlock_condition"`
	IsUnlocked      bool       `json:"is_unlocked"`
	DateEarned      *time.Time `json:"date_earned,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewAchievement(userID, title string, points int, unlockCondition string) *Achievement {
	now := Now()
	return &Achievement{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		Points:          points,
		UnlockCondition: unlockCondition,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (a *Achievement) Unlock() bool {
	return a.UnlockAt(Now())
}

// UnlockAt unlocks the achievement and stamps DateEarned. It reports false and
// leaves DateEarned untouched when the achievement is already unlocked, so the
// first earned date is kept.
func (a *Achievement) UnlockAt(now time.Time) bool {
	if a.IsUnlocked {
		return false
	}
	now = now.UTC()
	a.IsUnlocked = true
	a.DateEarned = &now
	if now.After(a.UpdatedAt) {
		a.UpdatedAt = now
	}
	return true
}

func (a *Achievement) ToRow() (Row, error) {
	if a.Points < 0 {
		return nil, &SerializationError{Table: TableAchievements, ID: a.ID, Column: "points", Err: ErrNegativeCounter}
	}
	// date_earned only has meaning once unlocked.
	var earned any
	if a.IsUnlocked {
		earned = timeValue(a.DateEarned)
	}
	return Row{
		"id":               a.ID,
		"user_id":          a.UserID,
		"title":            a.Title,
		"description":      a.Description,
		"points":           int64(a.Points),
		"unlock_condition": a.UnlockCondition,
		"is_unlocked":      a.IsUnlocked,
		"date_earned":      earned,
		"created_at":       FormatTime(a.CreatedAt),
		"updated_at":       FormatTime(a.UpdatedAt),
	}, nil
}

func AchievementFromRow(row Row) (*Achievement, error) {
	d := newRowDecoder(TableAchievements, row)
	a := &Achievement{
		ID:              d.id,
		UserID:          d.str("user_id"),
		Title:           d.str("title"),
		Description:     d.str("description"),
		Points:          d.counter("points"),
		UnlockCondition: d.str("unlock_condition"),
		IsUnlocked:      d.bool("is_unlocked"),
		DateEarned:      d.optTime("date_earned"),
		CreatedAt:       d.time("created_at"),
		UpdatedAt:       d.time("updated_at"),
	}
	if d.err != nil {
		return nil, d.err
	}
	if !a.IsUnlocked {
		a.DateEarned = nil
	}
	return a, nil
}
