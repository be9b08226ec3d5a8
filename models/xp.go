package models

import (
	"time"

	"github.com/google/uuid"
)

// XPEntry is one append-only ledger line. A user's XP total is the sum of
// their entries; there is no stored running counter.
type XPEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id" validate:"required"`
	Source     XPSource  `json:"source" validate:"enum"`
	Points     int       `json:"points" validate:"gte=0"`
	EarnedDate time.Time `json:"earned_date"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewXPEntry(userID string, source XPSource, points int) *XPEntry {
	now := Now()
	return &XPEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Source:     source,
		Points:     points,
		EarnedDate: now,
		CreatedAt:  now,
	}
}

func (x *XPEntry) ToRow() (Row, error) {
	source, err := encodeTag(TableXPEntries, x.ID, "source", x.Source)
	if err != nil {
		return nil, err
	}
	if x.Points < 0 {
		return nil, &SerializationError{Table: TableXPEntries, ID: x.ID, Column: "points", Err: ErrNegativeCounter}
	}
	return Row{
		"id":          x.ID,
		"user_id":     x.UserID,
		"source":      source,
		"points":      int64(x.Points),
		"earned_date": FormatTime(x.EarnedDate),
		"created_at":  FormatTime(x.CreatedAt),
	}, nil
}

func XPEntryFromRow(row Row) (*XPEntry, error) {
	d := newRowDecoder(TableXPEntries, row)
	x := &XPEntry{
		ID:         d.id,
		UserID:     d.str("user_id"),
		Source:     decodeTag(d, "source", ParseXPSource),
		Points:     d.counter("points"),
		EarnedDate: d.time("earned_date"),
		CreatedAt:  d.time("created_at"),
	}
	if d.err != nil {
		return nil, d.err
	}
	return x, nil
}
