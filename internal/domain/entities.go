package domain

import "time"

// TaskMode selects the directive template used when dispatching a prompt
// to the generative model.
type TaskMode string

const (
	ModeAnswer     TaskMode = "answer"
	ModeQuiz       TaskMode = "quiz"
	ModeSummarize  TaskMode = "summarize"
	ModeFlashcards TaskMode = "flashcards"
	ModePlan       TaskMode = "plan"
)

// Document is a unit of ingested study material. Immutable once created;
// re-ingesting a source with changed content replaces the document.
type Document struct {
	ID          string
	SourceName  string
	MIMEType    string
	Text        string
	ContentHash string
	IngestedAt  time.Time
}

// Chunk is a bounded span of a document's normalised text, the atomic
// retrieval unit. StartOffset and EndOffset are rune offsets into the
// document text; consecutive chunks of one document overlap by a bounded
// amount and together cover the text with no gaps.
type Chunk struct {
	ID          string
	DocID       string
	Seq         int
	StartOffset int
	EndOffset   int
	Text        string
	Tokens      []string
	Embedding   []float32 // nil until computed
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Message is a single turn of caller-provided conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PromptContext is the bounded context assembled for one generation call.
type PromptContext struct {
	Query       string    `json:"query"`
	Mode        TaskMode  `json:"mode"`
	BudgetChars int       `json:"budget_chars"`
	UsedChars   int       `json:"used_chars"`
	Passages    []Passage `json:"passages"`
	NoSupport   bool      `json:"no_support"`
	History     []Message `json:"history,omitempty"`
}

// Passage is one retrieved chunk carried into the prompt context.
type Passage struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
	Text   string  `json:"text"`
}

// QuizEntry is one parsed multiple-choice question.
type QuizEntry struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Flashcard is one parsed term/definition study card.
type Flashcard struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Stats summarises the persisted corpus.
type Stats struct {
	TotalDocs    int
	TotalChunks  int
	TotalVectors int
	ChunksBySrc  map[string]int
}
