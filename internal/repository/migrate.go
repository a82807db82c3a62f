package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/model"
)

const ivfflatIndexSQL = `CREATE INDEX IF NOT EXISTS idx_chunks_embedding_cosine
ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`

// Migrate creates or updates the schema. On PostgreSQL it also enables the
// vector extension and builds the cosine index used for ranking.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	postgres := db.Dialector.Name() == "postgres"

	if postgres {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("create vector extension failed: %w", err)
		}
	}
	if err := db.AutoMigrate(&model.Session{}, &model.Document{}, &model.Chunk{}, &model.Flashcard{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	if postgres {
		if err := db.Exec(ivfflatIndexSQL).Error; err != nil {
			return fmt.Errorf("create embedding index failed: %w", err)
		}
	}
	return nil
}
