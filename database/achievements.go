package database

import (
	"context"

	"neuro-sync/models"
)

type AchievementRepository struct {
	db *DB
}

func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

func (r *AchievementRepository) Create(ctx context.Context, a *models.Achievement) (*models.Achievement, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return insertRow(ctx, s, models.TableAchievements, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AchievementRepository) Get(ctx context.Context, id string) (*models.Achievement, error) {
	return getByID(ctx, r.db, models.TableAchievements, id, models.AchievementFromRow)
}

func (r *AchievementRepository) Update(ctx context.Context, a *models.Achievement) (*models.Achievement, error) {
	err := r.db.WithScope(ctx, func(ctx context.Context, s *Scope) error {
		return updateRow(ctx, s, models.TableAchievements, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AchievementRepository) Delete(ctx context.Context, id string) error {
	return deleteRow(ctx, r.db, models.TableAchievements, id)
}

type AchievementFilter struct {
	UserID   string
	Unlocked *bool
}

func (r *AchievementRepository) List(ctx context.Context, f AchievementFilter) ([]*models.Achievement, error) {
	var q filter
	if f.UserID != "" {
		q.add("user_id = ?", f.UserID)
	}
	if f.Unlocked != nil {
		q.add("is_unlocked = ?", *f.Unlocked)
	}
	return listRows(ctx, r.db, "SELECT * FROM achievements"+q.where()+" ORDER BY created_at ASC, id ASC", q.args, models.AchievementFromRow)
}
