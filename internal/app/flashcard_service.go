package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/panjf2000/ants/v2"

	"studydeck/internal/ai"
	"studydeck/internal/flashcard"
	"studydeck/internal/model"
	"studydeck/internal/pkg/workpool"
	"studydeck/internal/retrieval"
)

const (
	DefaultFlashcardCount = 10
	MaxFlashcardCount     = 50
)

type QueryEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (ai.Completion, error)
}

type Retriever interface {
	TopK(ctx context.Context, q retrieval.Query) ([]retrieval.Result, error)
}

type FlashcardStore interface {
	SessionExists(ctx context.Context, id uint) (bool, error)
	SaveFlashcards(ctx context.Context, cards []model.Flashcard) error
}

// UsagePublisher is optional; without one, usage is not metered.
type UsagePublisher interface {
	PublishUsage(ctx context.Context, event model.UsageEvent) error
}

type FlashcardConfig struct {
	DefaultCount     int
	MaxContextTokens int
}

type FlashcardService struct {
	embedder  QueryEmbedder
	retriever Retriever
	generator Generator
	store     FlashcardStore
	cache     FlashcardCache
	usage     UsagePublisher
	pool      *ants.Pool
	cfg       FlashcardConfig
	logger    *slog.Logger
}

type FlashcardDeps struct {
	Embedder  QueryEmbedder
	Retriever Retriever
	Generator Generator
	Store     FlashcardStore
	Cache     FlashcardCache
	Usage     UsagePublisher
	Pool      *ants.Pool
	Logger    *slog.Logger
}

func NewFlashcardService(deps FlashcardDeps, cfg FlashcardConfig) *FlashcardService {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = DefaultFlashcardCount
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashcardService{
		embedder:  deps.Embedder,
		retriever: deps.Retriever,
		generator: deps.Generator,
		store:     deps.Store,
		cache:     deps.Cache,
		usage:     deps.Usage,
		pool:      deps.Pool,
		cfg:       cfg,
		logger:    logger,
	}
}

// GenerateInput is one generation request. Prompt and SessionID are both
// optional but at least one must be set. K limits retrieval, N the number
// of cards asked for.
type GenerateInput struct {
	Prompt    string
	SessionID *uint
	K         *int
	N         *int
}

type GenerateResult struct {
	Flashcards []flashcard.Attributed `json:"flashcards"`
	Sources    []retrieval.Result     `json:"sources"`
	RawOutput  string                 `json:"raw_output"`
	SavedCount int                    `json:"saved_count"`
}

// Generate retrieves context for the prompt, asks the generator for cards,
// parses and attributes them, and stores them when a session is given.
// Embedder or generator failures abort before anything is saved.
func (s *FlashcardService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" && in.SessionID == nil {
		return nil, ErrPromptOrSession
	}
	if in.SessionID != nil && *in.SessionID == 0 {
		return nil, fmt.Errorf("%w: session_id must be positive", ErrInvalidInput)
	}
	n := s.cfg.DefaultCount
	if in.N != nil {
		n = *in.N
	}
	if n < 0 || n > MaxFlashcardCount {
		return nil, fmt.Errorf("%w: n must be between 0 and %d", ErrInvalidInput, MaxFlashcardCount)
	}

	if in.SessionID != nil {
		ok, err := s.store.SessionExists(ctx, *in.SessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		if !ok {
			return nil, ErrSessionNotFound
		}
	}

	var vector []float32
	if prompt != "" {
		v, err := workpool.Do(ctx, s.pool, func(ctx context.Context) ([]float32, error) {
			return s.embedder.EmbedText(ctx, prompt)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: embed prompt: %w", ErrGeneration, err)
		}
		vector = v
	}

	results, err := s.retriever.TopK(ctx, retrieval.Query{SessionID: in.SessionID, Vector: vector, K: in.K})
	if err != nil {
		if CategoryOf(err) == CategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("%w: retrieve context: %w", ErrPersistence, err)
	}

	out := &GenerateResult{Flashcards: []flashcard.Attributed{}, Sources: results}
	if n == 0 {
		return out, nil
	}

	passages := make([]ai.ContextPassage, len(results))
	sources := make([]flashcard.Source, len(results))
	for i, r := range results {
		passages[i] = ai.ContextPassage{Tag: r.Tag, Filename: r.Filename, ChunkIndex: r.ChunkIndex, Content: r.Content}
		sources[i] = flashcard.Source{Tag: r.Tag, Filename: r.Filename, ChunkIndex: r.ChunkIndex}
	}
	fullPrompt := ai.FlashcardPrompt(n, prompt, passages, s.cfg.MaxContextTokens)

	completion, err := workpool.Do(ctx, s.pool, func(ctx context.Context) (ai.Completion, error) {
		return s.generator.Generate(ctx, fullPrompt)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	out.RawOutput = completion.Text

	cards, strategy := flashcard.ParseWithStrategy(completion.Text)
	if len(cards) > n {
		cards = cards[:n]
	}
	out.Flashcards = flashcard.Attribute(cards, sources)
	s.logger.InfoContext(ctx, "flashcards generated",
		"cards", len(cards), "strategy", strategy, "sources", len(results))

	if in.SessionID != nil {
		sessionID := *in.SessionID
		saved, err := s.save(ctx, sessionID, out.Flashcards)
		if err != nil {
			return nil, err
		}
		out.SavedCount = saved
		s.meter(ctx, sessionID, completion)
	}
	return out, nil
}

func (s *FlashcardService) save(ctx context.Context, sessionID uint, cards []flashcard.Attributed) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	rows := make([]model.Flashcard, len(cards))
	for i, c := range cards {
		rows[i] = model.Flashcard{
			SessionID: &sessionID,
			Filename:  model.UnknownSourceFilename,
			Question:  c.Question,
			Answer:    c.Answer,
		}
		if c.Source != nil {
			idx := c.Source.ChunkIndex
			rows[i].Filename = c.Source.Filename
			rows[i].ChunkIndex = &idx
		}
	}
	if err := s.store.SaveFlashcards(ctx, rows); err != nil {
		return 0, fmt.Errorf("%w: save flashcards: %w", ErrPersistence, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "flashcard cache invalidate failed", "session_id", sessionID, "error", err)
		}
	}
	return len(rows), nil
}

func (s *FlashcardService) meter(ctx context.Context, sessionID uint, c ai.Completion) {
	if s.usage == nil {
		return
	}
	event := model.UsageEvent{
		SessionID:        sessionID,
		Model:            c.Model,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
	}
	if event.Total() <= 0 {
		return
	}
	if err := s.usage.PublishUsage(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish usage failed", "session_id", sessionID, "error", err)
	}
}
