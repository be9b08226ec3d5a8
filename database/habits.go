package database

import (
	"context"

	"neuro-sync/models"
)

type HabitRepository struct {
	db *DB
}

func NewHabitRepository(db *DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableHabits, habit)
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *HabitRepository) Get(ctx context.Context, id string) (*models.Habit, error) {
	return getByID(ctx, r.db, models.TableHabits, id, models.HabitFromRow)
}

func (r *HabitRepository) Update(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return updateRow(ctx, s, models.TableHabits, habit)
	})
	if err != nil {
		return nil, err
	}
	return habit, nil
}

func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, models.TableHabits, id)
}

type HabitFilter struct {
	UserID     string
	Frequency  models.HabitFrequency
	ActiveOnly bool
}

// List returns matching habits ordered by creation time.
func (r *HabitRepository) List(ctx context.Context, f HabitFilter) ([]*models.Habit, error) {
	var q filter
	if f.UserID != "" {
		q.add("user_id = ?", f.UserID)
	}
	if f.Frequency != "" {
		q.add("frequency = ?", string(f.Frequency))
	}
	if f.ActiveOnly {
		q.add("is_active = ?", 1)
	}
	return listRows(ctx, r.db, "SELECT * FROM habits"+q.where()+" ORDER BY created_at ASC, id ASC", q.args, models.HabitFromRow)
}
