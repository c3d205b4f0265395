package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormedQuiz = `QUESTION_1:
TEXT: What drives evaporation in the water cycle?
OPTION_A: Solar energy
OPTION_B: Wind alone
OPTION_C: Gravity
OPTION_D: Ocean currents
ANSWER: A

QUESTION_2:
TEXT: What forms when water vapour cools?
OPTION_A: Rain
OPTION_B: Clouds
OPTION_C: Rivers
OPTION_D: Ice caps
ANSWER: B
`

func TestParseQuiz_WellFormed(t *testing.T) {
	outcome := parseQuiz(wellFormedQuiz)

	require.True(t, outcome.Parsed())
	require.Len(t, outcome.Entries, 2)

	first := outcome.Entries[0]
	assert.Equal(t, "What drives evaporation in the water cycle?", first.Question)
	assert.Equal(t, []string{"Solar energy", "Wind alone", "Gravity", "Ocean currents"}, first.Options)
	assert.Equal(t, "A", first.Answer)
	assert.Equal(t, "B", outcome.Entries[1].Answer)
}

func TestParseQuiz_IgnoresPreamble(t *testing.T) {
	outcome := parseQuiz("Sure! Here is your quiz:\n\n" + wellFormedQuiz)

	assert.True(t, outcome.Parsed())
	assert.Len(t, outcome.Entries, 2)
}

func TestParseQuiz_DropsMalformedBlocks(t *testing.T) {
	text := wellFormedQuiz + `
QUESTION_3:
TEXT: Incomplete question with missing options
OPTION_A: Only one
ANSWER: A
`
	outcome := parseQuiz(text)

	assert.Len(t, outcome.Entries, 2, "malformed block must be dropped")
}

func TestParseQuiz_Unparseable(t *testing.T) {
	outcome := parseQuiz("I'm sorry, I cannot create a quiz about that topic.")

	assert.False(t, outcome.Parsed())
	assert.NotEmpty(t, outcome.Raw)
}

func TestParseQuiz_AnswerVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"A", "A"},
		{"b)", "B"},
		{" C ", "C"},
		{"d - because of gravity", "D"},
		{"E", ""},
		{"", ""},
		{"true", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normaliseAnswer(tt.raw), "raw %q", tt.raw)
	}
}

const wellFormedCards = `FLASHCARD_1:
TERM: Photosynthesis
DEFINITION: The process by which plants convert light energy into chemical
energy stored as glucose.

FLASHCARD_2:
TERM: Chlorophyll
DEFINITION: The green pigment in chloroplasts that absorbs light.
`

func TestParseFlashcards_WellFormed(t *testing.T) {
	outcome := parseFlashcards(wellFormedCards)

	require.True(t, outcome.Parsed())
	require.Len(t, outcome.Cards, 2)

	assert.Equal(t, "Photosynthesis", outcome.Cards[0].Term)
	// Continuation lines fold into the definition.
	assert.Contains(t, outcome.Cards[0].Definition, "energy stored as glucose")
	assert.Equal(t, "Chlorophyll", outcome.Cards[1].Term)
}

func TestParseFlashcards_DropsIncompleteCards(t *testing.T) {
	text := wellFormedCards + `
FLASHCARD_3:
TERM: Orphan term with no definition
`
	outcome := parseFlashcards(text)

	assert.Len(t, outcome.Cards, 2)
}

func TestParseFlashcards_Unparseable(t *testing.T) {
	outcome := parseFlashcards("Here are some study notes instead of flashcards.")

	assert.False(t, outcome.Parsed())
	assert.Equal(t, "Here are some study notes instead of flashcards.", outcome.Raw)
}
