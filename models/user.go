package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name" validate:"required,max=100"`
	Email      string    `json:"email" validate:"required,email"`
	Timezone   string    `json:"timezone" validate:"required,timezone"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

// NewUser returns a user with a fresh id and both timestamps set to now.
func NewUser(name, email, timezone string) *User {
	now := Now()
	return &User{
		ID:         uuid.NewString(),
		Name:       name,
		Email:      email,
		Timezone:   timezone,
		CreatedAt:  now,
		LastActive: now,
	}
}

// Touch advances LastActive to now. It never moves it backwards.
func (u *User) Touch(now time.Time) {
	if now.After(u.LastActive) {
		u.LastActive = now.UTC()
	}
}

// Location returns the user's time zone, or UTC when it cannot be loaded.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (u *User) ToRow() (Row, error) {
	return Row{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"timezone":    u.Timezone,
		"created_at":  FormatTime(u.CreatedAt),
		"last_active": FormatTime(u.LastActive),
	}, nil
}

func UserFromRow(row Row) (*User, error) {
	d := newRowDecoder(TableUsers, row)
	u := &User{
		ID:         d.id,
		Name:       d.str("name"),
		Email:      d.str("email"),
		Timezone:   d.str("timezone"),
		CreatedAt:  d.time("created_at"),
		LastActive: d.time("last_active"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return u, nil
}
