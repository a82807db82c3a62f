package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"studydeck/internal/model"
	"studydeck/internal/transport/http/response"
)

type SessionService interface {
	CreateSession(ctx context.Context) (uint, error)
	ListDocuments(ctx context.Context, sessionID uint) ([]model.Document, error)
	ListFlashcards(ctx context.Context, sessionID uint) ([]model.Flashcard, error)
}

type SessionHandler struct {
	svc SessionService
}

func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSession handles GET /session-id.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	id, err := h.svc.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": id})
}

// ListFlashcards handles GET /flashcards?session_id=.
func (h *SessionHandler) ListFlashcards(c *gin.Context) {
	sessionID, ok := requiredSessionID(c)
	if !ok {
		return
	}
	cards, err := h.svc.ListFlashcards(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "flashcards": cards})
}

// ListFiles handles GET /files?session_id=.
func (h *SessionHandler) ListFiles(c *gin.Context) {
	sessionID, ok := requiredSessionID(c)
	if !ok {
		return
	}
	docs, err := h.svc.ListDocuments(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "files": docs})
}
