package app

import (
	"context"
	"errors"
	"iter"
	"sync"

	"studydeck/internal/ai"
	"studydeck/internal/ingestion"
	"studydeck/internal/model"
	"studydeck/internal/retrieval"
)

type fakeStore struct {
	mu         sync.Mutex
	sessions   map[uint]bool
	nextID     uint
	docs       map[uint][]model.Document
	flashcards []model.Flashcard
	listCalls  int
	saveErr    error
}

func newFakeStore(sessions ...uint) *fakeStore {
	s := &fakeStore{sessions: map[uint]bool{}, nextID: 100, docs: map[uint][]model.Document{}}
	for _, id := range sessions {
		s.sessions[id] = true
	}
	return s
}

func (s *fakeStore) CreateSession(context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.sessions[s.nextID] = true
	return s.nextID, nil
}

func (s *fakeStore) SessionExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id], nil
}

func (s *fakeStore) ListDocuments(_ context.Context, id uint) ([]model.Document, error) {
	return s.docs[id], nil
}

func (s *fakeStore) ListFlashcards(_ context.Context, id uint) ([]model.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	var out []model.Flashcard
	for _, c := range s.flashcards {
		if c.SessionID != nil && *c.SessionID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveFlashcards(_ context.Context, cards []model.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	for _, c := range cards {
		c.ID = uint(len(s.flashcards) + 1)
		s.flashcards = append(s.flashcards, c)
	}
	return nil
}

type fakeCache struct {
	entries     map[uint][]model.Flashcard
	invalidated []uint
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uint][]model.Flashcard{}}
}

func (c *fakeCache) Get(_ context.Context, id uint) ([]model.Flashcard, bool, error) {
	cards, ok := c.entries[id]
	return cards, ok, nil
}

func (c *fakeCache) Set(_ context.Context, id uint, cards []model.Flashcard) error {
	c.entries[id] = cards
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, id uint) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (e *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return []float32{1, 0, 0}, nil
}

type fakeRetriever struct {
	results []retrieval.Result
	last    retrieval.Query
}

func (r *fakeRetriever) TopK(_ context.Context, q retrieval.Query) ([]retrieval.Result, error) {
	r.last = q
	return r.results, nil
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (ai.Completion, error) {
	g.calls++
	g.prompt = prompt
	if g.err != nil {
		return ai.Completion{}, g.err
	}
	return ai.Completion{Text: g.text, Model: "test-model", PromptTokens: 40, CompletionTokens: 10}, nil
}

type fakeUsage struct {
	events []model.UsageEvent
}

func (u *fakeUsage) PublishUsage(_ context.Context, e model.UsageEvent) error {
	u.events = append(u.events, e)
	return nil
}

type fakePipeline struct {
	got ingestion.Request
}

func (p *fakePipeline) Ingest(_ context.Context, req ingestion.Request) iter.Seq[ingestion.Event] {
	p.got = req
	return func(yield func(ingestion.Event) bool) {
		yield(ingestion.Event{Status: ingestion.StatusDone})
	}
}

var errProvider = errors.New("provider down")
