package usecase

import (
	"strings"

	"edumate/internal/domain"
)

// QuizOutcome is the tagged result of parsing a quiz response: either the
// structured entries, or the raw text for diagnosis and retry.
type QuizOutcome struct {
	Entries []domain.QuizEntry
	Raw     string
}

func (o QuizOutcome) Parsed() bool { return len(o.Entries) > 0 }

// FlashcardOutcome is the tagged result of parsing a flashcard response.
type FlashcardOutcome struct {
	Cards []domain.Flashcard
	Raw   string
}

func (o FlashcardOutcome) Parsed() bool { return len(o.Cards) > 0 }

// parseQuiz extracts QUESTION_n blocks. A block only counts when it has a
// question text, all four options, and an answer letter naming one of them;
// malformed blocks are dropped, and a response with zero well-formed blocks
// is Unparseable.
func parseQuiz(text string) QuizOutcome {
	outcome := QuizOutcome{Raw: text}

	for _, block := range splitBlocks(text, "QUESTION_") {
		entry := domain.QuizEntry{Options: make([]string, 4)}
		seen := 0

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "TEXT:"):
				entry.Question = strings.TrimSpace(strings.TrimPrefix(line, "TEXT:"))
			case strings.HasPrefix(line, "OPTION_A:"):
				entry.Options[0] = strings.TrimSpace(strings.TrimPrefix(line, "OPTION_A:"))
				seen++
			case strings.HasPrefix(line, "OPTION_B:"):
				entry.Options[1] = strings.TrimSpace(strings.TrimPrefix(line, "OPTION_B:"))
				seen++
			case strings.HasPrefix(line, "OPTION_C:"):
				entry.Options[2] = strings.TrimSpace(strings.TrimPrefix(line, "OPTION_C:"))
				seen++
			case strings.HasPrefix(line, "OPTION_D:"):
				entry.Options[3] = strings.TrimSpace(strings.TrimPrefix(line, "OPTION_D:"))
				seen++
			case strings.HasPrefix(line, "ANSWER:"):
				entry.Answer = normaliseAnswer(strings.TrimPrefix(line, "ANSWER:"))
			}
		}

		if entry.Question == "" || seen != 4 || entry.Answer == "" {
			continue
		}
		if hasEmpty(entry.Options) {
			continue
		}
		outcome.Entries = append(outcome.Entries, entry)
	}
	return outcome
}

// parseFlashcards extracts FLASHCARD_n blocks in the TERM/DEFINITION wire
// format. Definition text may continue over following lines until the next
// labelled line.
func parseFlashcards(text string) FlashcardOutcome {
	outcome := FlashcardOutcome{Raw: text}

	for _, block := range splitBlocks(text, "FLASHCARD_") {
		var card domain.Flashcard
		inDefinition := false

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "TERM:"):
				card.Term = strings.TrimSpace(strings.TrimPrefix(line, "TERM:"))
				inDefinition = false
			case strings.HasPrefix(line, "DEFINITION:"):
				card.Definition = strings.TrimSpace(strings.TrimPrefix(line, "DEFINITION:"))
				inDefinition = true
			case inDefinition && line != "":
				card.Definition += " " + line
			}
		}

		if card.Term == "" || card.Definition == "" {
			continue
		}
		outcome.Cards = append(outcome.Cards, card)
	}
	return outcome
}

// splitBlocks cuts text at each occurrence of the block marker, dropping
// anything before the first marker.
func splitBlocks(text, marker string) []string {
	parts := strings.Split(text, marker)
	if len(parts) < 2 {
		return nil
	}
	return parts[1:]
}

// normaliseAnswer reduces an answer label like "B" or "b)" to a single
// letter A-D, or empty when it cannot.
func normaliseAnswer(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	letter := strings.ToUpper(raw[:1])
	if letter < "A" || letter > "D" {
		return ""
	}
	return letter
}

func hasEmpty(values []string) bool {
	for _, v := range values {
		if v == "" {
			return true
		}
	}
	return false
}
