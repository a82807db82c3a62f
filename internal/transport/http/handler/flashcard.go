package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"studydeck/internal/app"
	"studydeck/internal/transport/http/response"
)

type FlashcardGenerator interface {
	Generate(ctx context.Context, in app.GenerateInput) (*app.GenerateResult, error)
}

type FlashcardHandler struct {
	svc FlashcardGenerator
}

func NewFlashcardHandler(svc FlashcardGenerator) *FlashcardHandler {
	return &FlashcardHandler{svc: svc}
}

// Generate handles GET /llm?prompt=&session_id=&k=&n=.
func (h *FlashcardHandler) Generate(c *gin.Context) {
	sessionID, ok := optionalUint(c, "session_id")
	if !ok {
		badRequest(c, "invalid session_id")
		return
	}
	k, ok := optionalInt(c, "k")
	if !ok {
		badRequest(c, "invalid k")
		return
	}
	n, ok := optionalInt(c, "n")
	if !ok {
		badRequest(c, "invalid n")
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), app.GenerateInput{
		Prompt:    c.Query("prompt"),
		SessionID: sessionID,
		K:         k,
		N:         n,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.OK(c, result)
}
