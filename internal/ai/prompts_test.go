package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlashcardPrompt_TagsPassages(t *testing.T) {
	prompt := FlashcardPrompt(3, "", []ContextPassage{
		{Tag: 0, Filename: "bio.txt", ChunkIndex: 2, Content: "Cells divide by mitosis."},
		{Tag: 1, Filename: "chem.txt", ChunkIndex: 0, Content: "Water is H2O."},
	}, 0)

	assert.Contains(t, prompt, "Return exactly 3 flashcards. If 3 is 0, return [].")
	assert.Contains(t, prompt, "[0] (bio.txt, chunk 2)\nCells divide by mitosis.")
	assert.Contains(t, prompt, "[1] (chem.txt, chunk 0)\nWater is H2O.")
	assert.Less(t, strings.Index(prompt, "[0]"), strings.Index(prompt, "[1]"))
	assert.NotContains(t, prompt, "Focus on:")
}

func TestFlashcardPrompt_Focus(t *testing.T) {
	prompt := FlashcardPrompt(5, "  the Krebs cycle ", nil, 0)
	assert.Contains(t, prompt, "Focus on: the Krebs cycle\n")
	assert.Contains(t, prompt, "(no context available)")
}

func TestFlashcardPrompt_ContextBudget(t *testing.T) {
	long := strings.Repeat("word ", 400)
	prompt := FlashcardPrompt(1, "", []ContextPassage{
		{Tag: 0, Filename: "a.txt", Content: "first passage"},
		{Tag: 1, Filename: "b.txt", Content: long},
	}, 50)

	assert.Contains(t, prompt, "first passage")
	assert.NotContains(t, prompt, "[1] (b.txt")
}

func TestTruncateToTokens(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 100)
	cut := TruncateToTokens(text, 20)
	assert.LessOrEqual(t, CountTokens(cut), 20)
	assert.True(t, strings.HasPrefix(text, cut))
	assert.Equal(t, "short", TruncateToTokens("short", 0))
}
