package ingestion

import "errors"

// Details reported on per-file skipped and error events.
const (
	DetailInvalidEncoding = "invalid encoding"
	DetailEmptyFile       = "empty file"
	DetailNoChunks        = "no chunks produced"
	DetailSessionNotFound = "session not found"
)

var (
	ErrSessionNotFound   = errors.New(DetailSessionNotFound)
	ErrEmbeddingMismatch = errors.New("embedding result does not match chunks")
)
