package repository

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studydeck/internal/model"
	"studydeck/internal/pkg/vecmath"
	"studydeck/internal/retrieval"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&chunks).Error; err != nil {
		return fmt.Errorf("create chunks batch failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) scoped(ctx context.Context, sessionID *uint) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Chunk{})
	if sessionID != nil {
		q = q.Where("session_id = ?", *sessionID)
	}
	return q
}

// Nearest returns up to limit chunks closest to query by cosine distance,
// ties broken by id. A negative limit returns every candidate. PostgreSQL
// ranks with pgvector's <=> operator; other dialects rank in process.
func (r *ChunkRepository) Nearest(ctx context.Context, sessionID *uint, query []float32, limit int) ([]retrieval.ScoredChunk, error) {
	if limit == 0 {
		return nil, nil
	}
	if r.db.Dialector.Name() == "postgres" {
		return r.nearestInDB(ctx, sessionID, query, limit)
	}

	var chunks []model.Chunk
	if err := r.scoped(ctx, sessionID).Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks for ranking failed: %w", err)
	}
	candidates := make([]vecmath.Candidate, len(chunks))
	for i := range chunks {
		candidates[i] = vecmath.Candidate{ID: chunks[i].ID, Vector: chunks[i].Embedding.Slice()}
	}
	ranked := vecmath.RankByDistance(query, candidates, limit)
	out := make([]retrieval.ScoredChunk, len(ranked))
	for i, rk := range ranked {
		out[i] = retrieval.ScoredChunk{Chunk: chunks[rk.Index], Distance: rk.Distance}
	}
	return out, nil
}

func (r *ChunkRepository) nearestInDB(ctx context.Context, sessionID *uint, query []float32, limit int) ([]retrieval.ScoredChunk, error) {
	q := r.scoped(ctx, sessionID).Order(clause.OrderBy{
		Expression: clause.Expr{SQL: "embedding <=> ?, id ASC", Vars: []any{pgvector.NewVector(query)}},
	})
	if limit > 0 {
		q = q.Limit(limit)
	}
	var chunks []model.Chunk
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("rank chunks by distance failed: %w", err)
	}
	out := make([]retrieval.ScoredChunk, len(chunks))
	for i := range chunks {
		out[i] = retrieval.ScoredChunk{
			Chunk:    chunks[i],
			Distance: vecmath.CosineDistance(query, chunks[i].Embedding.Slice()),
		}
	}
	return out, nil
}

// InOrder returns chunks by ascending chunk index, then id.
func (r *ChunkRepository) InOrder(ctx context.Context, sessionID *uint, limit int) ([]model.Chunk, error) {
	if limit == 0 {
		return nil, nil
	}
	q := r.scoped(ctx, sessionID).Order("chunk_index ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var chunks []model.Chunk
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	return chunks, nil
}
