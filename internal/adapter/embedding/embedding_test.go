package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"edumate/internal/domain"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)

	a, err := e.Embed(context.Background(), []string{"photosynthesis", "osmosis"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(context.Background(), []string{"photosynthesis", "osmosis"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(a) != 2 || len(a[0]) != 8 {
		t.Fatalf("unexpected shape: %d vectors of %d", len(a), len(a[0]))
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("embedding not deterministic at [%d][%d]", i, j)
			}
		}
	}
	if e.Calls() != 2 {
		t.Errorf("expected 2 recorded calls, got %d", e.Calls())
	}
}

func TestValidateInputs_RejectsBlank(t *testing.T) {
	e := NewMockEmbedder(4)

	_, err := e.Embed(context.Background(), []string{"fine", "   "})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// slowEmbedder blocks until its context is cancelled.
type slowEmbedder struct{}

func (slowEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowEmbedder) Dimension() int    { return 4 }
func (slowEmbedder) ModelName() string { return "slow" }

func TestWithTimeout_BoundsCall(t *testing.T) {
	e := WithTimeout(slowEmbedder{}, 10*time.Millisecond)

	start := time.Now()
	_, err := e.Embed(context.Background(), []string{"text"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the call")
	}
}

func TestWithTimeout_ZeroDisables(t *testing.T) {
	base := NewMockEmbedder(4)
	wrapped := WithTimeout(base, 0)
	if _, ok := wrapped.(*MockEmbedder); !ok {
		t.Error("zero timeout must return the embedder unwrapped")
	}
}
