package database

import (
	"context"
	"fmt"
	"time"

	"neuro-sync/models"
)

// XPRepository is the append-only XP ledger. It has no update or delete.
type XPRepository struct {
	db *DB
}

func NewXPRepository(db *DB) *XPRepository {
	return &XPRepository{db: db}
}

// Append adds an entry to the ledger.
func (r *XPRepository) Append(ctx context.Context, entry *models.XPEntry) (*models.XPEntry, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableXPEntries, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AppendMany adds entries in atomic batches and returns how many were written.
func (r *XPRepository) AppendMany(ctx context.Context, entries []*models.XPEntry) (int, error) {
	return insertBatches(ctx, r.db, models.TableXPEntries, entries)
}

func (r *XPRepository) Get(ctx context.Context, id string) (*models.XPEntry, error) {
	return getByID(ctx, r.db, models.TableXPEntries, id, models.XPEntryFromRow)
}

// XPFilter selects ledger entries; From is inclusive and To exclusive on earned_date.
type XPFilter struct {
	UserID string
	Source models.XPSource
	From   *time.Time
	To     *time.Time
}

func (r *XPRepository) List(ctx context.Context, f XPFilter) ([]*models.XPEntry, error) {
	var q filter
	if f.UserID != "" {
		q.add("user_id = ?", f.UserID)
	}
	if f.Source != "" {
		q.add("source = ?", string(f.Source))
	}
	if f.From != nil {
		q.add("earned_date >= ?", models.FormatTime(*f.From))
	}
	if f.To != nil {
		q.add("earned_date < ?", models.FormatTime(*f.To))
	}
	return listRows(ctx, r.db, "SELECT * FROM xp_entries"+q.where()+" ORDER BY created_at ASC, id ASC", q.args, models.XPEntryFromRow)
}

// TotalForUser sums the user's ledger.
func (r *XPRepository) TotalForUser(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, `SELECT COALESCE(SUM(points), 0) AS total FROM xp_entries WHERE user_id = ?`, userID)
		if err != nil {
			return err
		}
		n, ok := row["total"].(int64)
		if !ok {
			return fmt.Errorf("unexpected xp total type %T", row["total"])
		}
		total = int(n)
		return nil
	})
	return total, err
}
