package app

import (
	"errors"

	"studydeck/internal/retrieval"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoFiles         = errors.New("no files uploaded")
	ErrPromptOrSession = errors.New("prompt or session_id is required")
	ErrSessionNotFound = retrieval.ErrSessionNotFound
	ErrGeneration      = errors.New("flashcard generation failed")
	ErrPersistence     = errors.New("persistence failed")
)

// Category groups errors the way clients are told about them.
type Category string

const (
	CategoryClient      Category = "client_error"
	CategoryNotFound    Category = "not_found"
	CategoryExternal    Category = "external_service"
	CategoryPersistence Category = "persistence"
)

// CategoryOf classifies err. Anything unrecognised is treated as a
// persistence failure since the store is the only other collaborator.
func CategoryOf(err error) Category {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoFiles), errors.Is(err, ErrPromptOrSession):
		return CategoryClient
	case errors.Is(err, ErrGeneration):
		return CategoryExternal
	default:
		return CategoryPersistence
	}
}
