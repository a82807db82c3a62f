// Package chunker splits document text into bounded, overlapping spans for
// embedding.
package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultSize    = 512
	DefaultOverlap = 64
)

// separators are tried in order: paragraph, line, sentence, word, then a
// hard cut between characters.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunker splits text into spans of at most Size runes, with Overlap runes
// of context carried between consecutive spans.
type Chunker struct {
	size     int
	overlap  int
	splitter textsplitter.RecursiveCharacter
}

// New builds a chunker. Size <= 0 falls back to DefaultSize; an overlap that
// is negative or not smaller than size is clamped.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}
	return &Chunker{
		size:    size,
		overlap: overlap,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators(separators),
			textsplitter.WithLenFunc(utf8.RuneCountInString),
		),
	}
}

func (c *Chunker) Size() int    { return c.size }
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the non-empty spans of text in order of appearance.
// Whitespace-only input yields no spans.
func (c *Chunker) Split(text string) ([]string, error) {
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	parts, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text failed: %w", err)
	}
	spans := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			spans = append(spans, p)
		}
	}
	return spans, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
