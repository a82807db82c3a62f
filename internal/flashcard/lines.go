package flashcard

import (
	"regexp"
	"strconv"
	"strings"
)

// inlineQA wants the answer marker after sentence-ending punctuation, so a
// question containing "A:" stays whole; the last such marker wins.
var (
	bulletPrefix = regexp.MustCompile(`^\s*(?:[-*+\x{2022}\x{25CF}]|\d+[.)])\s+`)
	boldMarker   = regexp.MustCompile(`\*\*((?i:q|question|a|answer|source|source tag)\s*:)\*\*`)
	inlineQA     = regexp.MustCompile(`(?i)^(?:q|question)\s*\d*\s*:\s*(.+[?.!)])\s+(?:a|answer)\s*\d*\s*:\s*(.+)$`)
	questionLine = regexp.MustCompile(`(?i)^(?:q|question)\s*\d*\s*:\s*(.*)$`)
	answerLine   = regexp.MustCompile(`(?i)^(?:a|answer)\s*\d*\s*:\s*(.*)$`)
	sourceLine   = regexp.MustCompile(`(?i)^source(?:[\s_]*tag)?\s*:\s*(.*)$`)
	dashPair     = regexp.MustCompile(`^(.+?)(?:\s*[\x{2013}\x{2014}]\s*|\s+-\s+)(.+)$`)
	firstInt     = regexp.MustCompile(`-?\d+`)
)

// FirstInt extracts the first integer embedded in s ("[2]", "chunk 3").
func FirstInt(s string) (int, bool) {
	m := firstInt.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

type lineState int

const (
	stateIdle lineState = iota
	stateInAnswer
)

// qaMachine accumulates one pending card at a time.
type qaMachine struct {
	state    lineState
	question string
	answer   []string
	source   *int
	cards    []Card
}

func (m *qaMachine) flush() {
	q := strings.TrimSpace(m.question)
	a := strings.TrimSpace(strings.Join(m.answer, "\n"))
	if q != "" && a != "" {
		m.cards = append(m.cards, Card{Question: q, Answer: a, SourceTag: m.source})
	}
	m.question = ""
	m.answer = nil
	m.source = nil
	m.state = stateIdle
}

func (m *qaMachine) pending() bool {
	return strings.TrimSpace(m.question) != ""
}

func (m *qaMachine) feed(line string) {
	if match := inlineQA.FindStringSubmatch(line); match != nil {
		q, a := strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
		if q != "" && a != "" {
			m.cards = append(m.cards, Card{Question: q, Answer: a})
		}
		return
	}
	if match := questionLine.FindStringSubmatch(line); match != nil {
		m.flush()
		m.question = strings.TrimSpace(match[1])
		m.state = stateInAnswer
		return
	}
	if match := answerLine.FindStringSubmatch(line); match != nil {
		if !m.pending() {
			return
		}
		m.state = stateInAnswer
		if text := strings.TrimSpace(match[1]); text != "" {
			m.answer = append(m.answer, text)
		}
		return
	}
	if match := sourceLine.FindStringSubmatch(line); match != nil {
		if n, ok := FirstInt(match[1]); ok {
			m.source = &n
		}
		return
	}
	if m.state == stateInAnswer {
		m.answer = append(m.answer, line)
	}
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = bulletPrefix.ReplaceAllString(line, "")
	line = boldMarker.ReplaceAllString(line, "$1")
	return strings.TrimSpace(line)
}

// parseQALines runs the Q:/A: line machine, then falls back to one
// "question - answer" pair per line.
func parseQALines(raw string) []Card {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	m := &qaMachine{}
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		m.feed(line)
	}
	m.flush()
	if len(m.cards) > 0 {
		return m.cards
	}

	var cards []Card
	for _, line := range lines {
		line = cleanLine(line)
		if line == "" {
			continue
		}
		if match := dashPair.FindStringSubmatch(line); match != nil {
			q, a := strings.TrimSpace(match[1]), strings.TrimSpace(match[2])
			if q != "" && a != "" {
				cards = append(cards, Card{Question: q, Answer: a})
			}
		}
	}
	return cards
}
