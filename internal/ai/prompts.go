package ai

import (
	"fmt"
	"strings"
)

const flashcardPromptTemplate = `You are a helpful assistant that writes concise study flashcards.
Use the provided context only. Return JSON array of objects with keys
` + "`question`, `answer`, and `source_tag`" + ` (the bracketed number from context).
Return exactly %[1]d flashcards. If %[1]d is 0, return [].
Keep answers under 50 words.
%[2]s
Context:
%[3]s

Flashcards:`

// ContextPassage is one retrieved passage, labelled with the tag the model
// must echo back as source_tag.
type ContextPassage struct {
	Tag        int
	Filename   string
	ChunkIndex int
	Content    string
}

// FlashcardPrompt renders the generation prompt. Passages are added in order
// until maxContextTokens would be exceeded (0 means unlimited); focus is the
// user's optional free-text request.
func FlashcardPrompt(n int, focus string, passages []ContextPassage, maxContextTokens int) string {
	var ctxBuf strings.Builder
	used := 0
	for _, p := range passages {
		block := fmt.Sprintf("[%d] (%s, chunk %d)\n%s\n\n", p.Tag, p.Filename, p.ChunkIndex, strings.TrimSpace(p.Content))
		if maxContextTokens <= 0 {
			ctxBuf.WriteString(block)
			continue
		}
		cost := CountTokens(block)
		if used+cost > maxContextTokens {
			if used == 0 {
				ctxBuf.WriteString(TruncateToTokens(block, maxContextTokens))
			}
			break
		}
		ctxBuf.WriteString(block)
		used += cost
	}

	focusLine := ""
	if focus = strings.TrimSpace(focus); focus != "" {
		focusLine = "Focus on: " + focus + "\n"
	}
	contextText := strings.TrimSpace(ctxBuf.String())
	if contextText == "" {
		contextText = "(no context available)"
	}
	return fmt.Sprintf(flashcardPromptTemplate, n, focusLine, contextText)
}
