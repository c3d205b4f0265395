package port

import "edumate/internal/domain"

// Assembler builds a bounded prompt context from retrieved chunks.
type Assembler interface {
	// Assemble concatenates passages in descending similarity order under
	// the size budget. An empty result set still yields a valid context
	// with NoSupport set.
	Assemble(query string, mode domain.TaskMode, results []domain.ScoredChunk, history []domain.Message) domain.PromptContext
}
