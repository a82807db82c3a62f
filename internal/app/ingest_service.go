package app

import (
	"context"
	"iter"

	"studydeck/internal/ingestion"
)

// Ingester is the ingestion pipeline as seen by the service.
type Ingester interface {
	Ingest(ctx context.Context, req ingestion.Request) iter.Seq[ingestion.Event]
}

type IngestService struct {
	pipeline Ingester
}

func NewIngestService(pipeline Ingester) *IngestService {
	return &IngestService{pipeline: pipeline}
}

// Ingest validates the batch and hands back the progress stream. Request
// level problems are returned before any work starts.
func (s *IngestService) Ingest(ctx context.Context, sessionID *uint, files []ingestion.File) (iter.Seq[ingestion.Event], error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if sessionID != nil && *sessionID == 0 {
		return nil, ErrInvalidInput
	}
	return s.pipeline.Ingest(ctx, ingestion.Request{SessionID: sessionID, Files: files}), nil
}
