package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/model"
)

type FlashcardRepository struct {
	db *gorm.DB
}

func NewFlashcardRepository(db *gorm.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

func (r *FlashcardRepository) CreateBatch(ctx context.Context, cards []model.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&cards).Error; err != nil {
		return fmt.Errorf("create flashcards batch failed: %w", err)
	}
	return nil
}

func (r *FlashcardRepository) ListBySessionID(ctx context.Context, sessionID uint) ([]model.Flashcard, error) {
	var list []model.Flashcard
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list flashcards failed: %w", err)
	}
	return list, nil
}
