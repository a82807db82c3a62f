// Package flashcard turns free-form generator output into question/answer
// cards. Parsing never fails: a fixed cascade of recognizers is tried in
// order and the first one that yields any card wins, down to a raw-text
// fallback.
package flashcard

import (
	"strings"
)

// RawFallbackQuestion is the question used when the output had no
// recognizable structure and is kept whole as the answer.
const RawFallbackQuestion = "What are the key points of this material?"

// Card is one parsed flashcard. SourceTag is the retrieval position tag the
// generator attributed the card to, if any.
type Card struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	SourceTag *int   `json:"source_tag,omitempty"`
}

// recognizer is total: it returns nil rather than an error on non-match.
type recognizer struct {
	name  string
	parse func(string) []Card
}

var cascade = []recognizer{
	{name: "strict_json", parse: parseStrictJSON},
	{name: "embedded_json", parse: parseEmbeddedJSON},
	{name: "qa_lines", parse: parseQALines},
	{name: "raw", parse: parseRaw},
}

// Parse runs the recognizer cascade over raw and normalizes math delimiters
// in every resulting question and answer.
func Parse(raw string) []Card {
	cards, _ := ParseWithStrategy(raw)
	return cards
}

// ParseWithStrategy is Parse that also reports which recognizer produced the
// cards; the name is empty when nothing matched.
func ParseWithStrategy(raw string) ([]Card, string) {
	for _, r := range cascade {
		cards := r.parse(raw)
		if len(cards) == 0 {
			continue
		}
		for i := range cards {
			cards[i].Question = NormalizeMath(cards[i].Question)
			cards[i].Answer = NormalizeMath(cards[i].Answer)
		}
		return cards, r.name
	}
	return nil, ""
}

func parseRaw(raw string) []Card {
	text := strings.TrimSpace(raw)
	// A bare "[]" is the prompt's explicit "no cards" answer, like NONE.
	if text == "" || strings.EqualFold(text, "NONE") || isEmptyJSONArray(text) {
		return nil
	}
	return []Card{{Question: RawFallbackQuestion, Answer: text}}
}
