package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID                string       `json:"id"`
	UserID            string       `json:"user_id" validate:"required"`
	Title             string       `json:"title" validate:"required,min=3,max=100"`
	Description       *string      `json:"description,omitempty" validate:"omitempty,max=500"`
	Status            TaskStatus   `json:"status" validate:"enum"`
	Priority          TaskPriority `json:"priority" validate:"enum"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
	EstimatedDuration *int         `json:"estimated_duration,omitempty" validate:"omitempty,gte=0"` // minutes
	ActualDuration    *int         `json:"actual_duration,omitempty" validate:"omitempty,gte=0"`    // minutes
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	Tags              []string     `json:"tags,omitempty"`
}

// NewTask returns a pending, medium-priority task owned by userID.
func NewTask(userID, title string) *Task {
	now := Now()
	return &Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Status:    TaskStatusPending,
		Priority:  TaskPriorityMedium,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete marks the task completed at the current time.
func (t *Task) Complete() {
	t.CompleteAt(Now())
}

// CompleteAt marks the task completed. Completing an already completed task
// keeps the first completion time.
func (t *Task) CompleteAt(now time.Time) {
	if t.Status == TaskStatusCompleted && t.CompletedAt != nil {
		return
	}
	now = now.UTC()
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// SetStatus moves the task to a non-completed status. Use Complete to finish a task.
func (t *Task) SetStatus(status TaskStatus, now time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: task status %q", ErrInvalidTag, string(status))
	}
	if status == TaskStatusCompleted {
		t.CompleteAt(now)
		return nil
	}
	t.Status = status
	t.CompletedAt = nil
	t.touch(now)
	return nil
}

func (t *Task) touch(now time.Time) {
	now = now.UTC()
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

func (t *Task) IsOverdue() bool {
	return t.IsOverdueAt(Now())
}

// IsOverdueAt reports whether the task has a due date before now and is not completed.
func (t *Task) IsOverdueAt(now time.Time) bool {
	return t.DueDate != nil && t.Status != TaskStatusCompleted && now.After(*t.DueDate)
}

// check returns the offending column when the task breaks its invariants.
func (t *Task) check() (string, error) {
	if t.Status == TaskStatusCompleted && t.CompletedAt == nil {
		return "completed_at", fmt.Errorf("%w: completed task has no completed_at", ErrInvalidState)
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		return "updated_at", fmt.Errorf("%w: updated_at precedes created_at", ErrInvalidState)
	}
	return "", nil
}

func (t *Task) ToRow() (Row, error) {
	if col, err := t.check(); err != nil {
		return nil, fmt.Errorf("task %s: %s: %w", t.ID, col, err)
	}
	status, err := encodeTag(TableTasks, t.ID, "status", t.Status)
	if err != nil {
		return nil, err
	}
	priority, err := encodeTag(TableTasks, t.ID, "priority", t.Priority)
	if err != nil {
		return nil, err
	}
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return nil, &SerializationError{Table: TableTasks, ID: t.ID, Column: "tags", Err: err}
	}
	return Row{
		"id":                 t.ID,
		"user_id":            t.UserID,
		"title":              t.Title,
		"description":        stringValue(t.Description),
		"status":             status,
		"priority":           priority,
		"due_date":           timeValue(t.DueDate),
		"created_at":         FormatTime(t.CreatedAt),
		"updated_at":         FormatTime(t.UpdatedAt),
		"estimated_duration": intValue(t.EstimatedDuration),
		"actual_duration":    intValue(t.ActualDuration),
		"completed_at":       timeValue(t.CompletedAt),
		"tags":               tags,
	}, nil
}

func TaskFromRow(row Row) (*Task, error) {
	d := newRowDecoder(TableTasks, row)
	t := &Task{
		ID:                d.id,
		UserID:            d.str("user_id"),
		Title:             d.str("title"),
		Description:       d.optStr("description"),
		Status:            decodeTag(d, "status", ParseTaskStatus),
		Priority:          decodeTag(d, "priority", ParseTaskPriority),
		DueDate:           d.optTime("due_date"),
		CreatedAt:         d.time("created_at"),
		UpdatedAt:         d.time("updated_at"),
		EstimatedDuration: d.optInt("estimated_duration"),
		ActualDuration:    d.optInt("actual_duration"),
		CompletedAt:       d.optTime("completed_at"),
		Tags:              d.tags("tags"),
	}
	if d.err != nil {
		return nil, d.err
	}
	if col, err := t.check(); err != nil {
		return nil, &SerializationError{Table: TableTasks, ID: t.ID, Column: col, Err: err}
	}
	return t, nil
}
