package ingestion

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studydeck/internal/chunker"
	"studydeck/internal/model"
	"studydeck/internal/pkg/workpool"
)

const testDim = 4

type fakeStore struct {
	mu          sync.Mutex
	nextSession uint
	sessions    map[uint]bool
	docs        []model.Document
	chunks      []model.Chunk
	failOn      string
	createErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextSession: 1, sessions: map[uint]bool{}}
}

func (s *fakeStore) CreateSession(context.Context) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return 0, s.createErr
	}
	id := s.nextSession
	s.nextSession++
	s.sessions[id] = true
	return id, nil
}

func (s *fakeStore) SessionExists(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id], nil
}

func (s *fakeStore) SaveDocument(_ context.Context, doc *model.Document, chunks []model.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Filename == s.failOn {
		return errors.New("disk full")
	}
	doc.ID = uint(len(s.docs) + 1)
	s.docs = append(s.docs, *doc)
	for _, c := range chunks {
		c.DocumentID = doc.ID
		c.ID = uint(len(s.chunks) + 1)
		s.chunks = append(s.chunks, c)
	}
	return nil
}

func (s *fakeStore) chunksOf(filename string) []model.Chunk {
	var out []model.Chunk
	for _, c := range s.chunks {
		if c.Filename == filename {
			out = append(out, c)
		}
	}
	return out
}

type fakeEmbedder struct {
	failOn string
	dim    int
	drop   bool
	calls  int
}

func (e *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		if e.failOn != "" && strings.Contains(t, e.failOn) {
			return nil, errors.New("provider unavailable")
		}
		v := make([]float32, e.dim)
		v[0] = float32(len(t))
		out = append(out, v)
	}
	if e.drop && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func newPipeline(store *fakeStore, emb *fakeEmbedder, opts ...Option) *Pipeline {
	opts = append([]Option{WithDimension(testDim), WithChunker(chunker.New(40, 0))}, opts...)
	return New(store, emb, opts...)
}

func statuses(events []Event) []Status {
	out := make([]Status, len(events))
	for i, ev := range events {
		out[i] = ev.Status
	}
	return out
}

func TestIngest_NewSessionMixedBatch(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dim: testDim}
	p := newPipeline(store, emb)

	files := []File{
		{Filename: "a.txt", ContentType: "text/plain", Data: []byte("Cells are the basic unit of life.")},
		{Filename: "b.txt", ContentType: "text/plain", Data: []byte("   \n\t ")},
		{Filename: "c.txt", ContentType: "text/plain", Data: []byte{0xc3, 0x28, 0xa0, 0xa1}},
	}
	events := slices.Collect(p.Ingest(context.Background(), Request{Files: files}))

	require.Equal(t, []Status{StatusSession, StatusEmbedded, StatusSkipped, StatusError, StatusDone}, statuses(events))
	sessionID := events[0].SessionID
	assert.NotZero(t, sessionID)
	assert.Equal(t, "a.txt", events[1].Filename)
	assert.Equal(t, 1, events[1].Chunks)
	assert.Equal(t, Event{Status: StatusSkipped, SessionID: sessionID, Filename: "b.txt", Detail: DetailEmptyFile}, events[2])
	assert.Equal(t, "c.txt", events[3].Filename)
	assert.Equal(t, DetailInvalidEncoding, events[3].Detail)
	assert.True(t, events[4].Terminal())

	require.Len(t, store.docs, 1)
	assert.Equal(t, "a.txt", store.docs[0].Filename)
	assert.Equal(t, int64(len(files[0].Data)), store.docs[0].Size)
	assert.Equal(t, sessionID, store.docs[0].SessionID)
}

func TestIngest_ChunksAreContiguousAndDenormalized(t *testing.T) {
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	text := strings.Repeat("Photosynthesis turns light into sugar. ", 10)
	events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{
		{Filename: "bio.txt", ContentType: "text/plain", Data: []byte(text)},
	}}))
	require.Equal(t, StatusEmbedded, events[1].Status)

	chunks := store.chunksOf("bio.txt")
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, len(chunks), events[1].Chunks)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, events[0].SessionID, c.SessionID)
		assert.Equal(t, "text/plain", c.ContentType)
		assert.Equal(t, store.docs[0].ID, c.DocumentID)
		assert.Len(t, c.Embedding.Slice(), testDim)
		assert.NotEmpty(t, c.Content)
	}
}

func TestIngest_ExistingSession(t *testing.T) {
	store := newFakeStore()
	id, err := store.CreateSession(context.Background())
	require.NoError(t, err)
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	events := slices.Collect(p.Ingest(context.Background(), Request{
		SessionID: &id,
		Files:     []File{{Filename: "notes.txt", Data: []byte("Mitochondria make ATP.")}},
	}))

	require.Equal(t, []Status{StatusSession, StatusEmbedded, StatusDone}, statuses(events))
	assert.Equal(t, id, events[0].SessionID)
	assert.Equal(t, uint(2), store.nextSession, "no new session created")
}

func TestIngest_UnknownSession(t *testing.T) {
	store := newFakeStore()
	emb := &fakeEmbedder{dim: testDim}
	p := newPipeline(store, emb)
	missing := uint(42)

	events := slices.Collect(p.Ingest(context.Background(), Request{
		SessionID: &missing,
		Files:     []File{{Filename: "a.txt", Data: []byte("text")}},
	}))

	require.Len(t, events, 1)
	assert.Equal(t, StatusError, events[0].Status)
	assert.Empty(t, events[0].Filename)
	assert.True(t, IsSessionNotFound(events[0]))
	assert.True(t, events[0].Terminal())
	assert.Empty(t, store.docs)
	assert.Zero(t, emb.calls)
}

func TestIngest_SessionCreationFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("db down")
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{{Filename: "a.txt", Data: []byte("x")}}}))

	require.Len(t, events, 1)
	assert.Equal(t, StatusError, events[0].Status)
	assert.Contains(t, events[0].Detail, "db down")
}

func TestIngest_EmbeddingFailureIsIsolated(t *testing.T) {
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim, failOn: "poison"})

	events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{
		{Filename: "bad.txt", Data: []byte("poison pill")},
		{Filename: "good.txt", Data: []byte("healthy content")},
	}}))

	require.Equal(t, []Status{StatusSession, StatusError, StatusEmbedded, StatusDone}, statuses(events))
	assert.Equal(t, "bad.txt", events[1].Filename)
	assert.Contains(t, events[1].Detail, "provider unavailable")
	assert.Empty(t, store.chunksOf("bad.txt"))
	assert.NotEmpty(t, store.chunksOf("good.txt"))
}

func TestIngest_EmbeddingMismatch(t *testing.T) {
	t.Run("count", func(t *testing.T) {
		store := newFakeStore()
		p := newPipeline(store, &fakeEmbedder{dim: testDim, drop: true})
		events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{{Filename: "a.txt", Data: []byte("some text")}}}))
		require.Equal(t, StatusError, events[1].Status)
		assert.Empty(t, store.docs)
	})
	t.Run("dimension", func(t *testing.T) {
		store := newFakeStore()
		p := newPipeline(store, &fakeEmbedder{dim: testDim + 1})
		events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{{Filename: "a.txt", Data: []byte("some text")}}}))
		require.Equal(t, StatusError, events[1].Status)
		assert.Contains(t, events[1].Detail, "dimensions")
		assert.Empty(t, store.docs)
	})
}

func TestIngest_PersistFailureRollsBackOnlyThatFile(t *testing.T) {
	store := newFakeStore()
	store.failOn = "b.txt"
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{
		{Filename: "a.txt", Data: []byte("alpha")},
		{Filename: "b.txt", Data: []byte("beta")},
		{Filename: "c.txt", Data: []byte("gamma")},
	}}))

	require.Equal(t, []Status{StatusSession, StatusEmbedded, StatusError, StatusEmbedded, StatusDone}, statuses(events))
	assert.Contains(t, events[2].Detail, "disk full")
	assert.Len(t, store.docs, 2)
	assert.Empty(t, store.chunksOf("b.txt"))
}

func TestIngest_EmptyBatch(t *testing.T) {
	p := newPipeline(newFakeStore(), &fakeEmbedder{dim: testDim})

	events := slices.Collect(p.Ingest(context.Background(), Request{}))
	assert.Equal(t, []Status{StatusSession, StatusDone}, statuses(events))
}

func TestIngest_IsLazy(t *testing.T) {
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	_ = p.Ingest(context.Background(), Request{Files: []File{{Filename: "a.txt", Data: []byte("alpha")}}})
	assert.Equal(t, uint(1), store.nextSession)
	assert.Empty(t, store.docs)
}

func TestIngest_ConsumerStopsEarly(t *testing.T) {
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim})

	seq := p.Ingest(context.Background(), Request{Files: []File{
		{Filename: "a.txt", Data: []byte("alpha")},
		{Filename: "b.txt", Data: []byte("beta")},
	}})
	for ev := range seq {
		if ev.Status == StatusEmbedded {
			break
		}
	}

	require.Len(t, store.docs, 1)
	assert.Equal(t, "a.txt", store.docs[0].Filename)
}

func TestIngest_CancelledContextStopsNewWork(t *testing.T) {
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []Status
	for ev := range p.Ingest(ctx, Request{Files: []File{
		{Filename: "a.txt", Data: []byte("alpha")},
		{Filename: "b.txt", Data: []byte("beta")},
	}}) {
		got = append(got, ev.Status)
		if ev.Status == StatusEmbedded {
			cancel()
		}
	}

	assert.Equal(t, []Status{StatusSession, StatusEmbedded}, got)
	require.Len(t, store.docs, 1)
}

func TestIngest_UsesWorkerPool(t *testing.T) {
	pool, err := workpool.New(2)
	require.NoError(t, err)
	defer pool.Release()
	store := newFakeStore()
	p := newPipeline(store, &fakeEmbedder{dim: testDim}, WithPool(pool))

	events := slices.Collect(p.Ingest(context.Background(), Request{Files: []File{
		{Filename: "a.txt", Data: []byte("alpha")},
		{Filename: "b.md", ContentType: "text/markdown", Data: []byte("# Title\n\nSome **bold** text.")},
	}}))

	require.Equal(t, []Status{StatusSession, StatusEmbedded, StatusEmbedded, StatusDone}, statuses(events))
	chunks := store.chunksOf("b.md")
	require.NotEmpty(t, chunks)
	assert.NotContains(t, chunks[0].Content, "**")
}
