package port

import (
	"context"

	"edumate/internal/domain"
)

// Retriever embeds a query and finds the most relevant indexed chunks.
type Retriever interface {
	// Retrieve returns up to k chunks scored by similarity, descending.
	// Results below the configured minimum score are filtered out; when
	// nothing clears the threshold the result is empty.
	Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error)
}
