package app

import (
	"context"
	"fmt"
	"log/slog"

	"studydeck/internal/model"
)

type SessionStore interface {
	CreateSession(ctx context.Context) (uint, error)
	SessionExists(ctx context.Context, id uint) (bool, error)
	ListDocuments(ctx context.Context, sessionID uint) ([]model.Document, error)
	ListFlashcards(ctx context.Context, sessionID uint) ([]model.Flashcard, error)
}

// FlashcardCache is optional; a nil cache always reads through.
type FlashcardCache interface {
	Get(ctx context.Context, sessionID uint) ([]model.Flashcard, bool, error)
	Set(ctx context.Context, sessionID uint, cards []model.Flashcard) error
	Invalidate(ctx context.Context, sessionID uint) error
}

type SessionService struct {
	store  SessionStore
	cache  FlashcardCache
	logger *slog.Logger
}

func NewSessionService(store SessionStore, cache FlashcardCache, logger *slog.Logger) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{store: store, cache: cache, logger: logger}
}

func (s *SessionService) CreateSession(ctx context.Context) (uint, error) {
	id, err := s.store.CreateSession(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return id, nil
}

func (s *SessionService) requireSession(ctx context.Context, id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	ok, err := s.store.SessionExists(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

// ListDocuments returns the session's documents ordered by id.
func (s *SessionService) ListDocuments(ctx context.Context, sessionID uint) ([]model.Document, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocuments(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

// ListFlashcards returns the session's flashcards ordered by id, served from
// the cache when it has them.
func (s *SessionService) ListFlashcards(ctx context.Context, sessionID uint) ([]model.Flashcard, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		cards, hit, err := s.cache.Get(ctx, sessionID)
		if err != nil {
			s.logger.WarnContext(ctx, "flashcard cache read failed", "session_id", sessionID, "error", err)
		} else if hit {
			return cards, nil
		}
	}

	cards, err := s.store.ListFlashcards(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if cards == nil {
		cards = []model.Flashcard{}
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionID, cards); err != nil {
			s.logger.WarnContext(ctx, "flashcard cache write failed", "session_id", sessionID, "error", err)
		}
	}
	return cards, nil
}
