// Package retrieval answers top-k queries over stored chunks and labels each
// hit with the position tag the generator echoes back as source_tag.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"studydeck/internal/model"
)

// DefaultTopK applies when no k is given and the query is not session scoped.
const DefaultTopK = 5

var ErrSessionNotFound = errors.New("session not found")

// ScoredChunk is a stored chunk plus its cosine distance to the query vector.
type ScoredChunk struct {
	model.Chunk
	Distance float64
}

// Store is the read side retrieval needs. A negative limit means no limit;
// a nil sessionID means every session.
type Store interface {
	SessionExists(ctx context.Context, id uint) (bool, error)
	NearestChunks(ctx context.Context, sessionID *uint, query []float32, limit int) ([]ScoredChunk, error)
	ChunksInOrder(ctx context.Context, sessionID *uint, limit int) ([]model.Chunk, error)
}

// Query selects chunks. Vector nil means order by chunk index instead of
// similarity. K nil means DefaultTopK globally and no limit within a session.
type Query struct {
	SessionID *uint
	Vector    []float32
	K         *int
}

// Result is one retrieved passage. Distance is set only for vector queries.
type Result struct {
	Tag        int      `json:"tag"`
	Filename   string   `json:"filename"`
	ChunkIndex int      `json:"chunk_index"`
	Content    string   `json:"content"`
	Distance   *float64 `json:"distance,omitempty"`
}

type Retriever struct {
	store       Store
	defaultTopK int
	logger      *slog.Logger
}

type Option func(*Retriever)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDefaultTopK overrides DefaultTopK. Values below 1 are ignored.
func WithDefaultTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.defaultTopK = k
		}
	}
}

func New(store Store, opts ...Option) *Retriever {
	r := &Retriever{store: store, defaultTopK: DefaultTopK, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TopK runs q. An unknown session is ErrSessionNotFound; k < 1 yields an
// empty result after the session check.
func (r *Retriever) TopK(ctx context.Context, q Query) ([]Result, error) {
	if q.SessionID != nil {
		ok, err := r.store.SessionExists(ctx, *q.SessionID)
		if err != nil {
			return nil, fmt.Errorf("check session failed: %w", err)
		}
		if !ok {
			return nil, ErrSessionNotFound
		}
	}

	limit := r.resolveLimit(q)
	if limit == 0 {
		return []Result{}, nil
	}

	if q.Vector != nil {
		hits, err := r.store.NearestChunks(ctx, q.SessionID, q.Vector, limit)
		if err != nil {
			return nil, fmt.Errorf("nearest chunks failed: %w", err)
		}
		out := make([]Result, len(hits))
		for i, h := range hits {
			d := h.Distance
			out[i] = resultOf(i, h.Chunk)
			out[i].Distance = &d
		}
		r.logger.DebugContext(ctx, "retrieved by similarity", "results", len(out), "limit", limit)
		return out, nil
	}

	chunks, err := r.store.ChunksInOrder(ctx, q.SessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chunks failed: %w", err)
	}
	out := make([]Result, len(chunks))
	for i, c := range chunks {
		out[i] = resultOf(i, c)
	}
	r.logger.DebugContext(ctx, "retrieved by chunk order", "results", len(out), "limit", limit)
	return out, nil
}

// resolveLimit maps the query's k to a store limit: 0 for an empty result,
// -1 for unlimited.
func (r *Retriever) resolveLimit(q Query) int {
	if q.K == nil {
		if q.SessionID != nil {
			return -1
		}
		return r.defaultTopK
	}
	if *q.K < 1 {
		return 0
	}
	return *q.K
}

func resultOf(tag int, c model.Chunk) Result {
	return Result{
		Tag:        tag,
		Filename:   c.Filename,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
	}
}
