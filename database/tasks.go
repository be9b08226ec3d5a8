package database

import (
	"context"
	"time"

	"neuro-sync/models"
)

type TaskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableTasks, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// CreateMany inserts tasks in atomic batches and returns how many were written.
func (r *TaskRepository) CreateMany(ctx context.Context, tasks []*models.Task) (int, error) {
	return insertBatches(ctx, r.db, models.TableTasks, tasks)
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	return getByID(ctx, r.db, models.TableTasks, id, models.TaskFromRow)
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return updateRow(ctx, s, models.TableTasks, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, models.TableTasks, id)
}

// TaskFilter selects tasks by equality and due-date range. Zero fields match everything.
type TaskFilter struct {
	UserID    string
	Status    models.TaskStatus
	Priority  models.TaskPriority
	DueAfter  *time.Time
	DueBefore *time.Time
}

// List returns matching tasks ordered by creation time.
func (r *TaskRepository) List(ctx context.Context, f TaskFilter) ([]*models.Task, error) {
	var q filter
	if f.UserID != "" {
		q.add("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q.add("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q.add("priority = ?", string(f.Priority))
	}
	if f.DueAfter != nil {
		q.add("due_date >= ?", models.FormatTime(*f.DueAfter))
	}
	if f.DueBefore != nil {
		q.add("due_date < ?", models.FormatTime(*f.DueBefore))
	}
	return listRows(ctx, r.db, "SELECT * FROM tasks"+q.where()+" ORDER BY created_at ASC, id ASC", q.args, models.TaskFromRow)
}

// ListOverdue returns the user's unfinished tasks due before now, earliest first.
func (r *TaskRepository) ListOverdue(ctx context.Context, userID string, now time.Time) ([]*models.Task, error) {
	return listRows(ctx, r.db, `
		SELECT * FROM tasks
		WHERE user_id = ? AND due_date IS NOT NULL AND due_date < ? AND status != ?
		ORDER BY due_date ASC, id ASC
	`, []any{userID, models.FormatTime(now), string(models.TaskStatusCompleted)}, models.TaskFromRow)
}
