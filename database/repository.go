package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"neuro-sync/models"
)

// Repository groups one repository per entity family over a shared DB.
type Repository struct {
	Users        *UserRepository
	Tasks        *TaskRepository
	Habits       *HabitRepository
	Finance      *FinanceRepository
	XP           *XPRepository
	Achievements *AchievementRepository
	AppState     *AppStateRepository
}

func NewRepository(db *DB) *Repository {
	return &Repository{
		Users:        NewUserRepository(db),
		Tasks:        NewTaskRepository(db),
		Habits:       NewHabitRepository(db),
		Finance:      NewFinanceRepository(db),
		XP:           NewXPRepository(db),
		Achievements: NewAchievementRepository(db),
		AppState:     NewAppStateRepository(db),
	}
}

type rowEncoder interface {
	ToRow() (models.Row, error)
}

func sortedColumns(row models.Row) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func insertRow(ctx context.Context, s *Scope, table string, e rowEncoder) error {
	row, err := e.ToRow()
	if err != nil {
		return err
	}
	cols := sortedColumns(row)
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = row[col]
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), placeholders)
	if _, err := s.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s %v: %w", table, row["id"], err)
	}
	return nil
}

// updateRow rewrites every column except id for the row with the entity's id.
func updateRow(ctx context.Context, s *Scope, table string, e rowEncoder) error {
	row, err := e.ToRow()
	if err != nil {
		return err
	}
	id := row["id"]
	var sets []string
	var args []any
	for _, col := range sortedColumns(row) {
		if col == "id" {
			continue
		}
		sets = append(sets, col+" = ?")
		args = append(args, row[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %v: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update %s %v: %w", table, id, ErrNotFound)
	}
	return nil
}

func deleteRow(ctx context.Context, db *DB, table, id string) error {
	return db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		res, err := s.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
		if err != nil {
			return fmt.Errorf("delete %s %s: %w", table, id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("delete %s %s: %w", table, id, ErrNotFound)
		}
		return nil
	})
}

func getByID[T any](ctx context.Context, db *DB, table, id string, decode func(models.Row) (T, error)) (T, error) {
	var result T
	err := db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, fmt.Sprintf("SELECT * FROM %s WHERE id = ?", table), id)
		if err != nil || row == nil {
			return err
		}
		result, err = decode(row)
		return err
	})
	return result, err
}

// filter accumulates WHERE conditions and their arguments.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, arg)
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// listRows decodes every row of the query. Rows that fail to decode are
// skipped and reported together as RowErrors alongside the decoded rows.
func listRows[T any](ctx context.Context, db *DB, query string, args []any, decode func(models.Row) (T, error)) ([]T, error) {
	var rows []models.Row
	err := db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		var err error
		rows, err = s.QueryRows(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(rows))
	var skipped RowErrors
	for _, row := range rows {
		item, err := decode(row)
		if err != nil {
			var serr *models.SerializationError
			if !errors.As(err, &serr) {
				return nil, err
			}
			skipped = append(skipped, serr)
			continue
		}
		items = append(items, item)
	}
	if len(skipped) > 0 {
		return items, skipped
	}
	return items, nil
}

// insertBatches writes items in batches of the configured size. Each batch
// commits atomically; a failure leaves earlier batches committed and returns
// how many items were written. The whole run is bounded by the bulk timeout.
// It must be called outside any scope: a ctx from WithScope or InTx fails
// with ErrBulkInScope before anything is written.
func insertBatches[T rowEncoder](ctx context.Context, db *DB, table string, items []T) (int, error) {
	if _, ok := ctx.Value(scopeKey{db}).(*Scope); ok {
		return 0, fmt.Errorf("bulk insert %s: %w", table, ErrBulkInScope)
	}

	ctx, cancel := context.WithTimeout(ctx, db.settings.BulkTimeout)
	defer cancel()

	size := db.settings.BatchSize
	written := 0
	for start := 0; start < len(items); start += size {
		batch := items[start:min(start+size, len(items))]
		err := db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
			for _, item := range batch {
				if err := insertRow(ctx, s, table, item); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return written, fmt.Errorf("bulk insert %s: batch at %d: %w", table, start, err)
		}
		written += len(batch)
	}
	return written, nil
}
