package database

import (
	"context"
	"fmt"
	"time"

	"neuro-sync/models"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A reused id or email fails with ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableUsers, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Get retrieves a user by ID, or nil when there is none
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	return getByID(ctx, r.db, models.TableUsers, id, models.UserFromRow)
}

// GetByEmail retrieves a user by email, or nil when there is none
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		row, err := s.QueryRow(ctx, `SELECT * FROM users WHERE email = ?`, email)
		if err != nil || row == nil {
			return err
		}
		user, err = models.UserFromRow(row)
		return err
	})
	return user, err
}

// Update rewrites every field of the user. ErrNotFound if the id is unknown.
func (r *UserRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return updateRow(ctx, s, models.TableUsers, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// TouchActive advances last_active to at. An earlier at leaves the stored
// value alone, so concurrent touches cannot move it backwards.
func (r *UserRepository) TouchActive(ctx context.Context, id string, at time.Time) error {
	return r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		res, err := s.Exec(ctx, `UPDATE users SET last_active = MAX(last_active, ?) WHERE id = ?`, models.FormatTime(at), id)
		if err != nil {
			return fmt.Errorf("touch users %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("touch users %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Delete removes the user and, through foreign keys, everything they own.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, models.TableUsers, id)
}

type UserFilter struct {
	ActiveSince *time.Time
}

// List returns users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]*models.User, error) {
	var q filter
	if f.ActiveSince != nil {
		q.add("last_active >= ?", models.FormatTime(*f.ActiveSince))
	}
	return listRows(ctx, r.db, "SELECT * FROM users"+q.where()+" ORDER BY created_at ASC, id ASC", q.args, models.UserFromRow)
}
