package embedding

import (
	"context"
	"sync/atomic"

	"edumate/internal/port"
)

var _ port.Embedder = (*MockEmbedder)(nil)

// MockEmbedder produces deterministic pseudo-embeddings derived from the
// input characters. Useful for tests and offline runs.
type MockEmbedder struct {
	dimension int
	calls     atomic.Int64
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (e *MockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)
	if err := validateInputs(texts); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, e.dimension)
		for j, r := range texts[i] {
			embeddings[i][j%e.dimension] += float32(r) / 1000.0
		}
	}
	return embeddings, nil
}

// Calls reports how many Embed invocations were made.
func (e *MockEmbedder) Calls() int {
	return int(e.calls.Load())
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}
