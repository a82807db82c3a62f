package flashcard

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

var trailingComma = regexp.MustCompile(`,(\s*[\]}])`)

var (
	questionKeys = []string{"question", "q", "front"}
	answerKeys   = []string{"answer", "a", "back"}
	sourceKeys   = []string{"source_tag", "source", "tag"}
)

func parseStrictJSON(raw string) []Card {
	return decodeCards(strings.TrimSpace(raw))
}

// parseEmbeddedJSON looks at the span from the first '[' to the last ']'.
// If that does not decode it retries once after repairing the usual model
// slips: trailing commas and typographic quotes.
func parseEmbeddedJSON(raw string) []Card {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}
	span := raw[start : end+1]
	if cards := decodeCards(span); len(cards) > 0 {
		return cards
	}
	return decodeCards(repairJSON(span))
}

// decodeCards accepts each array element on its own: elements that are not
// objects or lack a question or answer are skipped.
func decodeCards(s string) []Card {
	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil
	}
	var cards []Card
	for _, elem := range elems {
		var item map[string]any
		if err := json.Unmarshal(elem, &item); err != nil || item == nil {
			continue
		}
		q, okQ := firstString(item, questionKeys)
		a, okA := firstString(item, answerKeys)
		if !okQ || !okA {
			continue
		}
		cards = append(cards, Card{
			Question:  q,
			Answer:    a,
			SourceTag: sourceTagOf(item),
		})
	}
	return cards
}

// firstString returns the first key whose value is a non-empty string.
func firstString(item map[string]any, keys []string) (string, bool) {
	for _, k := range keys {
		if s, ok := item[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func sourceTagOf(item map[string]any) *int {
	for _, k := range sourceKeys {
		switch v := item[k].(type) {
		case float64:
			if v == math.Trunc(v) && !math.IsInf(v, 0) {
				n := int(v)
				return &n
			}
		case string:
			if n, ok := FirstInt(v); ok {
				return &n
			}
		}
	}
	return nil
}

func repairJSON(s string) string {
	s = strings.NewReplacer("\u201c", `"`, "\u201d", `"`, "\u2018", "'", "\u2019", "'").Replace(s)
	return trailingComma.ReplaceAllString(s, "$1")
}

// isEmptyJSONArray reports whether s is exactly a JSON array with no
// elements, the model's way of saying there is nothing to make cards from.
func isEmptyJSONArray(s string) bool {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return false
	}
	return len(items) == 0
}
