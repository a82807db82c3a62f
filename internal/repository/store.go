package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studydeck/internal/model"
	"studydeck/internal/retrieval"
)

// Store bundles the repositories behind the contracts ingestion and
// retrieval depend on.
type Store struct {
	db         *gorm.DB
	Sessions   *SessionRepository
	Documents  *DocumentRepository
	Chunks     *ChunkRepository
	Flashcards *FlashcardRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Sessions:   NewSessionRepository(db),
		Documents:  NewDocumentRepository(db),
		Chunks:     NewChunkRepository(db),
		Flashcards: NewFlashcardRepository(db),
	}
}

func (s *Store) CreateSession(ctx context.Context) (uint, error) {
	session, err := s.Sessions.Create(ctx)
	if err != nil {
		return 0, err
	}
	return session.ID, nil
}

func (s *Store) SessionExists(ctx context.Context, id uint) (bool, error) {
	return s.Sessions.Exists(ctx, id)
}

// SaveDocument writes doc and its chunks in one transaction. Either all of
// them become visible or none do.
func (s *Store) SaveDocument(ctx context.Context, doc *model.Document, chunks []model.Chunk) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := NewDocumentRepository(tx).Create(ctx, doc); err != nil {
			return err
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
			chunks[i].SessionID = doc.SessionID
		}
		return NewChunkRepository(tx).CreateBatch(ctx, chunks)
	})
	if err != nil {
		return fmt.Errorf("save document %q failed: %w", doc.Filename, err)
	}
	return nil
}

func (s *Store) NearestChunks(ctx context.Context, sessionID *uint, query []float32, limit int) ([]retrieval.ScoredChunk, error) {
	return s.Chunks.Nearest(ctx, sessionID, query, limit)
}

func (s *Store) ChunksInOrder(ctx context.Context, sessionID *uint, limit int) ([]model.Chunk, error) {
	return s.Chunks.InOrder(ctx, sessionID, limit)
}

func (s *Store) AddTokenUsage(ctx context.Context, sessionID uint, delta int64) error {
	return s.Sessions.AddTokenUsage(ctx, sessionID, delta)
}

func (s *Store) ListDocuments(ctx context.Context, sessionID uint) ([]model.Document, error) {
	return s.Documents.ListBySessionID(ctx, sessionID)
}

func (s *Store) SaveFlashcards(ctx context.Context, cards []model.Flashcard) error {
	return s.Flashcards.CreateBatch(ctx, cards)
}

func (s *Store) ListFlashcards(ctx context.Context, sessionID uint) ([]model.Flashcard, error) {
	return s.Flashcards.ListBySessionID(ctx, sessionID)
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db failed: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
