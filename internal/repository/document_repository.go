package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

// ListBySessionID returns the session's documents in upload order, without
// their raw content.
func (r *DocumentRepository) ListBySessionID(ctx context.Context, sessionID uint) ([]model.Document, error) {
	var list []model.Document
	if err := r.db.WithContext(ctx).
		Omit("content").
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}
