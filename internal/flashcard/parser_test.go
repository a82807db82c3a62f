package flashcard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestParse_StrictJSON(t *testing.T) {
	raw := `[{"question":"What is ATP?","answer":"The cell's energy currency.","source_tag":0},
	         {"question":"Where is DNA stored?","answer":"In the nucleus."}]`

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "strict_json", strategy)
	require.Len(t, cards, 2)
	assert.Equal(t, Card{Question: "What is ATP?", Answer: "The cell's energy currency.", SourceTag: intPtr(0)}, cards[0])
	assert.Equal(t, "Where is DNA stored?", cards[1].Question)
	assert.Nil(t, cards[1].SourceTag)
}

func TestParse_JSONKeySynonyms(t *testing.T) {
	raw := `[{"front":"Capital of France?","back":"Paris","source":"[2]"},{"q":"2+2?","a":"4","tag":1}]`

	cards := Parse(raw)
	require.Len(t, cards, 2)
	assert.Equal(t, "Capital of France?", cards[0].Question)
	assert.Equal(t, "Paris", cards[0].Answer)
	assert.Equal(t, intPtr(2), cards[0].SourceTag)
	assert.Equal(t, intPtr(1), cards[1].SourceTag)
}

func TestParse_JSONSkipsNonObjectElements(t *testing.T) {
	raw := `["just a string", 42, null, {"question":"Kept?","answer":"Yes"}]`

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "strict_json", strategy)
	require.Len(t, cards, 1)
	assert.Equal(t, Card{Question: "Kept?", Answer: "Yes"}, cards[0])
}

func TestParse_JSONSkipsIncompleteObjects(t *testing.T) {
	raw := `[{"question":"Only a question"},{"question":"Q","answer":""},{"question":"Kept?","answer":"Yes"}]`

	cards := Parse(raw)
	require.Len(t, cards, 1)
	assert.Equal(t, "Kept?", cards[0].Question)
}

func TestParse_EmbeddedJSONWithRepair(t *testing.T) {
	raw := "Here are your cards:\n```json\n[{\"question\":\"What is a gene?\",\"answer\":\"A unit of heredity.\"},]\n```\nGood luck!"

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "embedded_json", strategy)
	require.Len(t, cards, 1)
	assert.Equal(t, "What is a gene?", cards[0].Question)
	assert.Equal(t, "A unit of heredity.", cards[0].Answer)
}

func TestParse_EmbeddedJSONSmartQuotes(t *testing.T) {
	raw := "Cards: [{\u201cquestion\u201d: \u201cWhat is pH?\u201d, \u201canswer\u201d: \u201cA measure of acidity.\u201d}]"

	cards := Parse(raw)
	require.Len(t, cards, 1)
	assert.Equal(t, "What is pH?", cards[0].Question)
}

func TestParse_QABlocksWithSource(t *testing.T) {
	raw := `Q: What is osmosis?
A: Movement of water
across a membrane.
Source: [2]

Q: What is diffusion?
A: Movement from high to low concentration.`

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "qa_lines", strategy)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is osmosis?", cards[0].Question)
	assert.Equal(t, "Movement of water\nacross a membrane.", cards[0].Answer)
	assert.Equal(t, intPtr(2), cards[0].SourceTag)
	assert.Equal(t, "What is diffusion?", cards[1].Question)
	assert.Nil(t, cards[1].SourceTag)
}

func TestParse_InlineQA(t *testing.T) {
	cards := Parse("Q: What is 2+2? A: 4\nQ: What is 3+3? A: 6")
	require.Len(t, cards, 2)
	assert.Equal(t, Card{Question: "What is 2+2?", Answer: "4"}, cards[0])
	assert.Equal(t, Card{Question: "What is 3+3?", Answer: "6"}, cards[1])
}

func TestParse_InlineQANumbered(t *testing.T) {
	cards, strategy := ParseWithStrategy("Q1: What is the capital of France? A1: Paris\nQuestion 2: Largest planet? Answer 2: Jupiter")
	assert.Equal(t, "qa_lines", strategy)
	require.Len(t, cards, 2)
	assert.Equal(t, Card{Question: "What is the capital of France?", Answer: "Paris"}, cards[0])
	assert.Equal(t, Card{Question: "Largest planet?", Answer: "Jupiter"}, cards[1])
}

func TestParse_QuestionContainingAnswerMarker(t *testing.T) {
	cards := Parse("Q: What is Vitamin A: used for?\nA: Vision and immune function.")
	require.Len(t, cards, 1)
	assert.Equal(t, "What is Vitamin A: used for?", cards[0].Question)
	assert.Equal(t, "Vision and immune function.", cards[0].Answer)

	cards = Parse("Q: Is vitamin A. essential? A: Yes.")
	require.Len(t, cards, 1)
	assert.Equal(t, "Is vitamin A. essential?", cards[0].Question)
	assert.Equal(t, "Yes.", cards[0].Answer)
}

func TestParse_BulletsAndBoldMarkers(t *testing.T) {
	raw := "1. **Q:** What is ATP?\n   **A:** Energy currency.\n- Question: Who wrote Hamlet?\n- Answer: Shakespeare."

	cards := Parse(raw)
	require.Len(t, cards, 2)
	assert.Equal(t, "What is ATP?", cards[0].Question)
	assert.Equal(t, "Energy currency.", cards[0].Answer)
	assert.Equal(t, "Who wrote Hamlet?", cards[1].Question)
	assert.Equal(t, "Shakespeare.", cards[1].Answer)
}

func TestParse_AnswerWithoutQuestionIgnored(t *testing.T) {
	cards := Parse("A: orphan answer\nQ: Real question?\nA: Real answer.")
	require.Len(t, cards, 1)
	assert.Equal(t, "Real question?", cards[0].Question)
	assert.Equal(t, "Real answer.", cards[0].Answer)
}

func TestParse_DashPairs(t *testing.T) {
	raw := "- Mitosis - division producing two identical cells\n- Meiosis \u2013 division producing gametes"

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "qa_lines", strategy)
	require.Len(t, cards, 2)
	assert.Equal(t, Card{Question: "Mitosis", Answer: "division producing two identical cells"}, cards[0])
	assert.Equal(t, Card{Question: "Meiosis", Answer: "division producing gametes"}, cards[1])
}

func TestParse_NothingToParse(t *testing.T) {
	for _, raw := range []string{"", "   \n ", "NONE", " none ", "[]"} {
		cards, strategy := ParseWithStrategy(raw)
		assert.Empty(t, cards, "input %q", raw)
		assert.Empty(t, strategy, "input %q", raw)
	}
}

func TestParse_RawFallback(t *testing.T) {
	raw := "  Photosynthesis converts light into chemical energy.\n"

	cards, strategy := ParseWithStrategy(raw)
	assert.Equal(t, "raw", strategy)
	require.Len(t, cards, 1)
	assert.Equal(t, RawFallbackQuestion, cards[0].Question)
	assert.Equal(t, "Photosynthesis converts light into chemical energy.", cards[0].Answer)
}

func TestParse_NormalizesMath(t *testing.T) {
	raw := `[{"question":"What is \\(x^2\\) at x=3?","answer":"\\[E=mc^2\\] is unrelated; it is 9."}]`

	cards := Parse(raw)
	require.Len(t, cards, 1)
	assert.Equal(t, "What is $x^2$ at x=3?", cards[0].Question)
	assert.Equal(t, "$$E=mc^2$$ is unrelated; it is 9.", cards[0].Answer)
}

func TestNormalizeMath(t *testing.T) {
	assert.Equal(t, "$x^2$", NormalizeMath(`\(x^2\)`))
	assert.Equal(t, "$$E=mc^2$$", NormalizeMath(`\[E=mc^2\]`))
	assert.Equal(t, "$$a\n+b$$ and $c$", NormalizeMath("\\[a\n+b\\] and \\(c\\)"))
	assert.Equal(t, "plain text (with parens) [and brackets]", NormalizeMath("plain text (with parens) [and brackets]"))
}

func TestFirstInt(t *testing.T) {
	n, ok := FirstInt("[3]")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	n, ok = FirstInt("chunk 12 of 20")
	assert.True(t, ok)
	assert.Equal(t, 12, n)

	_, ok = FirstInt("none")
	assert.False(t, ok)
}

func TestAttribute(t *testing.T) {
	cards := []Card{
		{Question: "a", Answer: "1", SourceTag: intPtr(1)},
		{Question: "b", Answer: "2"},
		{Question: "c", Answer: "3", SourceTag: intPtr(9)},
	}
	sources := []Source{
		{Tag: 0, Filename: "bio.txt", ChunkIndex: 0},
		{Tag: 1, Filename: "chem.md", ChunkIndex: 4},
	}

	out := Attribute(cards, sources)
	require.Len(t, out, 3)
	require.NotNil(t, out[0].Source)
	assert.Equal(t, "chem.md", out[0].Source.Filename)
	assert.Equal(t, 4, out[0].Source.ChunkIndex)
	assert.Nil(t, out[1].Source)
	assert.Nil(t, out[2].Source)
	assert.Equal(t, "c", out[2].Question)
}
