package database

import (
	"context"
	"fmt"
	"time"

	"neuro-sync/models"
)

type FinanceRepository struct {
	db *DB
}

func NewFinanceRepository(db *DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (r *FinanceRepository) Create(ctx context.Context, record *models.FinanceRecord) (*models.FinanceRecord, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableFinanceEntries, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *FinanceRepository) Get(ctx context.Context, id string) (*models.FinanceRecord, error) {
	return getByID(ctx, r.db, models.TableFinanceEntries, id, models.FinanceRecordFromRow)
}

func (r *FinanceRepository) Update(ctx context.Context, record *models.FinanceRecord) (*models.FinanceRecord, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return updateRow(ctx, s, models.TableFinanceEntries, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *FinanceRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, models.TableFinanceEntries, id)
}

// FinanceFilter selects entries; From is inclusive and To exclusive.
type FinanceFilter struct {
	UserID   string
	Category models.FinanceCategory
	From     *time.Time
	To       *time.Time
}

func (f FinanceFilter) build() filter {
	var q filter
	if f.UserID != "" {
		q.add("user_id = ?", f.UserID)
	}
	if f.Category != "" {
		q.add("category = ?", string(f.Category))
	}
	if f.From != nil {
		q.add("transaction_date >= ?", models.FormatTime(*f.From))
	}
	if f.To != nil {
		q.add("transaction_date < ?", models.FormatTime(*f.To))
	}
	return q
}

// List returns matching entries ordered by transaction date, then creation time.
func (r *FinanceRepository) List(ctx context.Context, f FinanceFilter) ([]*models.FinanceRecord, error) {
	q := f.build()
	return listRows(ctx, r.db, "SELECT * FROM finance_entries"+q.where()+" ORDER BY transaction_date ASC, created_at ASC, id ASC", q.args, models.FinanceRecordFromRow)
}

// FinanceTotals sums entries by classification. Expense is the sum of
// expense-category amounts, so refunds (negative amounts) reduce it.
type FinanceTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

func (t FinanceTotals) Net() float64 {
	return t.Income - t.Expense
}

func (r *FinanceRepository) Totals(ctx context.Context, f FinanceFilter) (FinanceTotals, error) {
	q := f.build()
	args := append([]any{string(models.FinanceCategoryIncome), string(models.FinanceCategoryIncome)}, q.args...)
	var totals FinanceTotals
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, `
			SELECT
				COALESCE(SUM(CASE WHEN category = ? THEN amount ELSE 0 END), 0.0) AS income,
				COALESCE(SUM(CASE WHEN category != ? THEN amount ELSE 0 END), 0.0) AS expense
			FROM finance_entries`+q.where(), args...)
		if err != nil {
			return err
		}
		totals.Income, err = toFloat(row["income"])
		if err != nil {
			return err
		}
		totals.Expense, err = toFloat(row["expense"])
		return err
	})
	return totals, err
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("unexpected aggregate type %T", v)
	}
}
