package usecase

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/phuslu/log"

	"edumate/internal/domain"
	"edumate/internal/port"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const systemPrompt = "You are EduMate, a study assistant. Be accurate, cite the provided material when it is present, and keep answers focused on the student's question."

// maxParseRetries bounds re-dispatch after an unparseable structured
// response.
const maxParseRetries = 1

// TutorUseCase runs one tutoring task end to end: retrieve support,
// assemble a bounded context, render the mode's directive, dispatch to the
// model, and post-process. Each call is a single request/response;
// conversation history is caller-provided.
type TutorUseCase struct {
	retrieve  *RetrieveUseCase
	assembler port.Assembler
	llm       port.LLM
	timeout   time.Duration
	templates *template.Template
	shuffler  *rand.Rand
}

// PlanRequest carries the study-plan parameters.
type PlanRequest struct {
	Goal      string
	Duration  string
	DailyTime string
	Level     string
	Style     string
}

func NewTutorUseCase(retrieve *RetrieveUseCase, assembler port.Assembler, llm port.LLM, timeout time.Duration) (*TutorUseCase, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tmpl, err := template.New("prompts").Funcs(template.FuncMap{
		"formatPassages": formatPassages,
		"formatHistory":  formatHistory,
	}).ParseFS(promptTemplates, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parsing prompt templates: %w", err)
	}

	return &TutorUseCase{
		retrieve:  retrieve,
		assembler: assembler,
		llm:       llm,
		timeout:   timeout,
		templates: tmpl,
		shuffler:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// promptData is the template payload: the assembled context plus the
// per-mode extras.
type promptData struct {
	domain.PromptContext
	Count                 int
	Difficulty            string
	DifficultyInstruction string
	Duration              string
	DailyTime             string
	Level                 string
	Style                 string
}

// Answer responds to a question grounded in retrieved material.
func (u *TutorUseCase) Answer(ctx context.Context, query string, history []domain.Message) (string, error) {
	pc, err := u.buildContext(ctx, query, domain.ModeAnswer, history)
	if err != nil {
		return "", err
	}
	text, err := u.dispatch(ctx, "answer.txt", promptData{PromptContext: pc})
	if err != nil {
		return "", err
	}
	return normaliseWhitespace(text), nil
}

// Summarize produces revision notes for a topic.
func (u *TutorUseCase) Summarize(ctx context.Context, topic string) (string, error) {
	pc, err := u.buildContext(ctx, topic, domain.ModeSummarize, nil)
	if err != nil {
		return "", err
	}
	text, err := u.dispatch(ctx, "summarize.txt", promptData{PromptContext: pc})
	if err != nil {
		return "", err
	}
	return normaliseWhitespace(text), nil
}

// Quiz generates count multiple-choice questions about a topic. An
// unparseable response is retried once with a stricter directive before
// failing with domain.ErrMalformedGeneration.
func (u *TutorUseCase) Quiz(ctx context.Context, topic string, count int) ([]domain.QuizEntry, error) {
	if count <= 0 {
		count = 5
	}
	pc, err := u.buildContext(ctx, topic, domain.ModeQuiz, nil)
	if err != nil {
		return nil, err
	}
	data := promptData{PromptContext: pc, Count: count}

	templateName := "quiz.txt"
	for attempt := 0; ; attempt++ {
		text, err := u.dispatch(ctx, templateName, data)
		if err != nil {
			return nil, err
		}

		outcome := parseQuiz(text)
		if outcome.Parsed() {
			return outcome.Entries, nil
		}
		if attempt >= maxParseRetries {
			return nil, fmt.Errorf("%w: quiz response unparseable after retry", domain.ErrMalformedGeneration)
		}
		log.Warn().Str("topic", topic).Msg("quiz response unparseable, retrying with strict directive")
		templateName = "quiz_strict.txt"
	}
}

// Flashcards generates count term/definition cards. difficulty is one of
// basic, intermediate, advanced (defaults to intermediate).
func (u *TutorUseCase) Flashcards(ctx context.Context, topic string, count int, difficulty string, shuffle bool) ([]domain.Flashcard, error) {
	if count <= 0 {
		count = 10
	}
	pc, err := u.buildContext(ctx, topic, domain.ModeFlashcards, nil)
	if err != nil {
		return nil, err
	}
	difficulty, instruction := difficultyInstruction(difficulty)
	data := promptData{
		PromptContext:         pc,
		Count:                 count,
		Difficulty:            difficulty,
		DifficultyInstruction: instruction,
	}

	templateName := "flashcards.txt"
	var cards []domain.Flashcard
	for attempt := 0; ; attempt++ {
		text, err := u.dispatch(ctx, templateName, data)
		if err != nil {
			return nil, err
		}

		outcome := parseFlashcards(text)
		if outcome.Parsed() {
			cards = outcome.Cards
			break
		}
		if attempt >= maxParseRetries {
			return nil, fmt.Errorf("%w: flashcard response unparseable after retry", domain.ErrMalformedGeneration)
		}
		log.Warn().Str("topic", topic).Msg("flashcard response unparseable, retrying with strict directive")
		templateName = "flashcards_strict.txt"
	}

	if shuffle {
		u.shuffler.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	}
	return cards, nil
}

// Plan generates a day-by-day study plan for a learning goal.
func (u *TutorUseCase) Plan(ctx context.Context, req PlanRequest) (string, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return "", fmt.Errorf("%w: empty learning goal", domain.ErrInvalidInput)
	}
	pc, err := u.buildContext(ctx, req.Goal, domain.ModePlan, nil)
	if err != nil {
		return "", err
	}
	data := promptData{
		PromptContext: pc,
		Duration:      orDefault(req.Duration, "2 weeks"),
		DailyTime:     orDefault(req.DailyTime, "1 hour"),
		Level:         orDefault(req.Level, "beginner"),
		Style:         orDefault(req.Style, "mixed"),
	}
	text, err := u.dispatch(ctx, "plan.txt", data)
	if err != nil {
		return "", err
	}
	return normaliseWhitespace(text), nil
}

// buildContext retrieves support for the query and packs it under the
// budget. A query the retriever rejects propagates as-is.
func (u *TutorUseCase) buildContext(ctx context.Context, query string, mode domain.TaskMode, history []domain.Message) (domain.PromptContext, error) {
	if strings.TrimSpace(query) == "" {
		return domain.PromptContext{}, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	results, err := u.retrieve.Retrieve(ctx, query)
	if err != nil {
		return domain.PromptContext{}, err
	}
	pc := u.assembler.Assemble(query, mode, results, history)
	if pc.NoSupport {
		log.Debug().Str("query", query).Msg("no supporting material above threshold")
	}
	return pc, nil
}

// dispatch renders the named template and issues one bounded model call.
func (u *TutorUseCase) dispatch(ctx context.Context, templateName string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := u.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", templateName, err)
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	text, err := u.llm.Generate(ctx, systemPrompt, buf.String())
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return text, nil
}

func difficultyInstruction(difficulty string) (string, string) {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "basic":
		return "Basic", "Focus on simple, fundamental concepts and basic definitions. Use clear, straightforward language."
	case "advanced":
		return "Advanced", "Focus on complex ideas, nuanced concepts, and advanced terminology. Use sophisticated academic language."
	default:
		return "Intermediate", "Include more detailed concepts and relationships. Use moderate academic vocabulary."
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// normaliseWhitespace trims the response and collapses runs of blank lines.
func normaliseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func formatPassages(passages []domain.Passage) string {
	var sb strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&sb, "### [%d] %s (relevance %.2f)\n%s\n\n", i+1, p.Source, p.Score, p.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatHistory(history []domain.Message) string {
	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}
