// Package ingestion turns uploaded files into stored, embedded chunks and
// reports progress as a lazy event sequence. A failure on one file never
// stops the others.
package ingestion

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/panjf2000/ants/v2"

	"studydeck/internal/chunker"
	"studydeck/internal/model"
	"studydeck/internal/pkg/textextract"
	"studydeck/internal/pkg/workpool"
)

// Store persists sessions and documents. SaveDocument must write the
// document and all of its chunks atomically, filling in their ids.
type Store interface {
	CreateSession(ctx context.Context) (uint, error)
	SessionExists(ctx context.Context, id uint) (bool, error)
	SaveDocument(ctx context.Context, doc *model.Document, chunks []model.Chunk) error
}

// Embedder returns one vector per text, in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// File is one uploaded file.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request is an ingestion batch. A nil SessionID creates a new session.
type Request struct {
	SessionID *uint
	Files     []File
}

type Pipeline struct {
	store     Store
	embedder  Embedder
	chunker   *chunker.Chunker
	pool      *ants.Pool
	dimension int
	logger    *slog.Logger
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPool runs embedding calls on pool instead of the consuming goroutine.
func WithPool(pool *ants.Pool) Option {
	return func(p *Pipeline) {
		p.pool = pool
	}
}

func WithChunker(c *chunker.Chunker) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.chunker = c
		}
	}
}

// WithDimension sets the vector length every embedding must have. Zero
// disables the check.
func WithDimension(dim int) Option {
	return func(p *Pipeline) {
		p.dimension = dim
	}
}

func New(store Store, embedder Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		embedder:  embedder,
		chunker:   chunker.New(chunker.DefaultSize, chunker.DefaultOverlap),
		dimension: model.VectorDim,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest returns the progress of processing req. Nothing happens until the
// sequence is ranged over; work stops when the consumer stops or ctx ends,
// and documents already committed stay committed.
//
// A successful stream is: session, one embedded/skipped/error per file in
// input order, done. If the session cannot be resolved the stream is a
// single error event with no filename.
func (p *Pipeline) Ingest(ctx context.Context, req Request) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		sessionID, err := p.resolveSession(ctx, req.SessionID)
		if err != nil {
			p.logger.WarnContext(ctx, "resolve session failed", "error", err)
			yield(Event{Status: StatusError, Detail: err.Error()})
			return
		}
		if !yield(Event{Status: StatusSession, SessionID: sessionID}) {
			return
		}

		for _, f := range req.Files {
			if ctx.Err() != nil {
				p.logger.InfoContext(ctx, "ingestion cancelled", "session_id", sessionID)
				return
			}
			ev := p.ingestFile(ctx, sessionID, f)
			if !yield(ev) {
				return
			}
		}
		yield(Event{Status: StatusDone, SessionID: sessionID})
	}
}

func (p *Pipeline) resolveSession(ctx context.Context, id *uint) (uint, error) {
	if id == nil {
		created, err := p.store.CreateSession(ctx)
		if err != nil {
			return 0, fmt.Errorf("create session failed: %w", err)
		}
		return created, nil
	}
	ok, err := p.store.SessionExists(ctx, *id)
	if err != nil {
		return 0, fmt.Errorf("check session failed: %w", err)
	}
	if !ok {
		return 0, ErrSessionNotFound
	}
	return *id, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, sessionID uint, f File) Event {
	log := p.logger.With("session_id", sessionID, "filename", f.Filename)
	fail := func(detail string) Event {
		log.WarnContext(ctx, "file not ingested", "detail", detail)
		return Event{Status: StatusError, SessionID: sessionID, Filename: f.Filename, Detail: detail}
	}
	skip := func(detail string) Event {
		log.InfoContext(ctx, "file skipped", "detail", detail)
		return Event{Status: StatusSkipped, SessionID: sessionID, Filename: f.Filename, Detail: detail}
	}

	text, err := textextract.Extract(f.Filename, f.ContentType, f.Data)
	if err != nil {
		return fail(DetailInvalidEncoding)
	}
	if strings.TrimSpace(text) == "" {
		return skip(DetailEmptyFile)
	}

	spans, err := p.chunker.Split(text)
	if err != nil {
		return fail(err.Error())
	}
	if len(spans) == 0 {
		return skip(DetailNoChunks)
	}

	vectors, err := workpool.Do(ctx, p.pool, func(ctx context.Context) ([][]float32, error) {
		return p.embedder.EmbedTexts(ctx, spans)
	})
	if err == nil {
		err = p.checkVectors(vectors, len(spans))
	}
	if err != nil {
		return fail(fmt.Sprintf("embedding failed: %v", err))
	}

	doc := &model.Document{
		SessionID:   sessionID,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Content:     f.Data,
		Size:        int64(len(f.Data)),
	}
	chunks := make([]model.Chunk, len(spans))
	for i, span := range spans {
		chunks[i] = model.Chunk{
			SessionID:   sessionID,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			ChunkIndex:  i,
			Content:     span,
			Embedding:   model.NewEmbedding(vectors[i]),
		}
	}
	if err := p.store.SaveDocument(ctx, doc, chunks); err != nil {
		return fail(fmt.Sprintf("persist failed: %v", err))
	}

	log.InfoContext(ctx, "file ingested", "document_id", doc.ID, "chunks", len(chunks))
	return Event{Status: StatusEmbedded, SessionID: sessionID, Filename: f.Filename, Chunks: len(chunks)}
}

func (p *Pipeline) checkVectors(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrEmbeddingMismatch, len(vectors), want)
	}
	if p.dimension <= 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != p.dimension {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrEmbeddingMismatch, i, len(v), p.dimension)
		}
	}
	return nil
}

// IsSessionNotFound reports whether an error event came from an unknown
// session id.
func IsSessionNotFound(ev Event) bool {
	return ev.Status == StatusError && ev.Filename == "" && ev.Detail == DetailSessionNotFound
}
