package database

import (
	"context"
	"fmt"

	"neuro-sync/models"
)

// AppStateRepository stores process-wide key/value settings.
type AppStateRepository struct {
	db *DB
}

func NewAppStateRepository(db *DB) *AppStateRepository {
	return &AppStateRepository{db: db}
}

// Get returns the value for key and whether it exists.
func (r *AppStateRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, `SELECT value FROM app_state WHERE key = ?`, key)
		if err != nil || row == nil {
			return err
		}
		found = true
		switch v := row["value"].(type) {
		case nil:
		case string:
			value = v
		default:
			return fmt.Errorf("app_state %s: unexpected value type %T", key, v)
		}
		return nil
	})
	return value, found, err
}

func (r *AppStateRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		_, err := s.Exec(ctx, `
			INSERT INTO app_state (key, value, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				updated_at = excluded.updated_at
		`, key, value, models.FormatTime(models.Now()))
		return err
	})
}
