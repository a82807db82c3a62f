package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context) (*model.Session, error) {
	session := &model.Session{}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}
	return session, nil
}

func (r *SessionRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check session failed: %w", err)
	}
	return count > 0, nil
}

// AddTokenUsage adds delta to the session's running token counter in place.
func (r *SessionRepository) AddTokenUsage(ctx context.Context, id uint, delta int64) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", id).
		UpdateColumn("token_usage", gorm.Expr("token_usage + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("add session token usage failed: %w", res.Error)
	}
	return nil
}
