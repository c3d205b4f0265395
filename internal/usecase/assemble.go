package usecase

import (
	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Assembler = (*ContextAssembler)(nil)

// ContextAssembler packs retrieved chunks into a bounded prompt context.
// Passages are taken greedily in descending score order; assembly stops at
// the first passage that would exceed the budget, so the context never
// holds a weaker passage in place of a stronger one that almost fit.
type ContextAssembler struct {
	library     port.LibraryStore
	budgetChars int
}

func NewContextAssembler(library port.LibraryStore, budgetChars int) *ContextAssembler {
	if budgetChars <= 0 {
		budgetChars = 6000
	}
	return &ContextAssembler{
		library:     library,
		budgetChars: budgetChars,
	}
}

func (a *ContextAssembler) Assemble(query string, mode domain.TaskMode, results []domain.ScoredChunk, history []domain.Message) domain.PromptContext {
	pc := domain.PromptContext{
		Query:       query,
		Mode:        mode,
		BudgetChars: a.budgetChars,
		History:     history,
	}

	sources := make(map[string]string)
	for _, result := range results {
		size := len([]rune(result.Chunk.Text))
		if pc.UsedChars+size > a.budgetChars {
			break
		}
		pc.Passages = append(pc.Passages, domain.Passage{
			Source: a.sourceName(sources, result.Chunk.DocID),
			Score:  result.Score,
			Text:   result.Chunk.Text,
		})
		pc.UsedChars += size
	}

	pc.NoSupport = len(pc.Passages) == 0
	return pc
}

func (a *ContextAssembler) sourceName(memo map[string]string, docID string) string {
	if name, ok := memo[docID]; ok {
		return name
	}
	name := docID
	if doc, err := a.library.GetDoc(docID); err == nil && doc.SourceName != "" {
		name = doc.SourceName
	}
	memo[docID] = name
	return name
}
