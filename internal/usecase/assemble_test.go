package usecase

import (
	"strings"
	"testing"
	"time"

	"edumate/internal/adapter/memstore"
	"edumate/internal/domain"
)

func scoredChunks(texts ...string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(texts))
	for i, text := range texts {
		out[i] = domain.ScoredChunk{
			Chunk: domain.Chunk{ID: string(rune('a' + i)), DocID: "doc1", Text: text},
			Score: 1 - float64(i)*0.1,
		}
	}
	return out
}

func TestAssemble_BudgetNeverExceeded(t *testing.T) {
	store := memstore.NewMemoryStore()

	sizes := [][]int{
		{100, 100, 100},
		{500, 10, 490, 300},
		{6000},
		{1, 1, 1, 1, 1},
		{7000, 10},
	}
	budgets := []int{10, 100, 1000, 6000}

	for _, budget := range budgets {
		a := NewContextAssembler(store, budget)
		for _, chunkSizes := range sizes {
			var texts []string
			for _, n := range chunkSizes {
				texts = append(texts, strings.Repeat("x", n))
			}
			pc := a.Assemble("q", domain.ModeAnswer, scoredChunks(texts...), nil)

			total := 0
			for _, p := range pc.Passages {
				total += len([]rune(p.Text))
			}
			if total > budget {
				t.Errorf("budget %d exceeded: packed %d chars from sizes %v", budget, total, chunkSizes)
			}
			if pc.UsedChars != total {
				t.Errorf("UsedChars %d does not match packed total %d", pc.UsedChars, total)
			}
		}
	}
}

func TestAssemble_StopsAtFirstOverflow(t *testing.T) {
	store := memstore.NewMemoryStore()
	a := NewContextAssembler(store, 100)

	// The second chunk overflows; the third would fit but must not be
	// taken, since the order reflects relevance.
	results := scoredChunks(
		strings.Repeat("a", 60),
		strings.Repeat("b", 60),
		strings.Repeat("c", 10),
	)
	pc := a.Assemble("q", domain.ModeAnswer, results, nil)

	if len(pc.Passages) != 1 {
		t.Fatalf("expected assembly to stop at the overflowing chunk, got %d passages", len(pc.Passages))
	}
	if pc.Passages[0].Text[0] != 'a' {
		t.Errorf("kept the wrong passage: %q", pc.Passages[0].Text[:5])
	}
}

func TestAssemble_EmptyResultsSignalNoSupport(t *testing.T) {
	store := memstore.NewMemoryStore()
	a := NewContextAssembler(store, 1000)

	pc := a.Assemble("what is mitosis?", domain.ModeQuiz, nil, nil)

	if !pc.NoSupport {
		t.Error("expected NoSupport for empty retrieval")
	}
	if pc.Query != "what is mitosis?" || pc.Mode != domain.ModeQuiz {
		t.Errorf("context missing query/mode: %+v", pc)
	}
	if len(pc.Passages) != 0 {
		t.Errorf("expected no passages, got %d", len(pc.Passages))
	}
}

func TestAssemble_ResolvesSourceNames(t *testing.T) {
	store := memstore.NewMemoryStore()
	store.PutDoc(domain.Document{ID: "doc1", SourceName: "bio/notes.md", IngestedAt: time.Now()})

	a := NewContextAssembler(store, 1000)
	pc := a.Assemble("q", domain.ModeAnswer, scoredChunks("some text"), nil)

	if len(pc.Passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(pc.Passages))
	}
	if pc.Passages[0].Source != "bio/notes.md" {
		t.Errorf("expected source name resolved, got %q", pc.Passages[0].Source)
	}
}

func TestAssemble_CarriesHistory(t *testing.T) {
	store := memstore.NewMemoryStore()
	a := NewContextAssembler(store, 1000)

	history := []domain.Message{{Role: "user", Content: "earlier question"}}
	pc := a.Assemble("q", domain.ModeAnswer, nil, history)

	if len(pc.History) != 1 || pc.History[0].Content != "earlier question" {
		t.Errorf("history not carried: %+v", pc.History)
	}
}
