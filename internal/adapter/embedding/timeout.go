package embedding

import (
	"context"
	"time"

	"edumate/internal/port"
)

// timeoutEmbedder bounds each Embed call. Embedding is the only blocking
// network I/O on the ingest path, so the deadline lives here rather than
// in every caller.
type timeoutEmbedder struct {
	port.Embedder
	timeout time.Duration
}

// WithTimeout wraps an embedder so every Embed call carries a deadline.
func WithTimeout(e port.Embedder, timeout time.Duration) port.Embedder {
	if timeout <= 0 {
		return e
	}
	return &timeoutEmbedder{Embedder: e, timeout: timeout}
}

func (t *timeoutEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Embedder.Embed(ctx, texts)
}
