// Package retriever turns a study question into a ranked set of supporting
// chunks via the vector index.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Retriever = (*SemanticRetriever)(nil)

// SemanticRetriever embeds the query, searches the index, and resolves hits
// back to chunks. Results below minScore are dropped; near-duplicates of a
// higher-scored result are filtered before trimming to k.
type SemanticRetriever struct {
	embedder port.Embedder
	index    port.VectorIndex
	library  port.LibraryStore
	dedup    *NearDuplicateFilter
	minScore float64
}

func NewSemanticRetriever(embedder port.Embedder, index port.VectorIndex, library port.LibraryStore, minScore, dedupJaccard float64) *SemanticRetriever {
	return &SemanticRetriever{
		embedder: embedder,
		index:    index,
		library:  library,
		dedup:    NewNearDuplicateFilter(dedupJaccard),
		minScore: minScore,
	}
}

func (r *SemanticRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, nil
	}

	queryVector, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	// Over-fetch so threshold and dedup filtering still leave k results.
	hits, err := r.index.Search(queryVector, k*2)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Score < r.minScore {
			continue
		}
		chunk, err := r.library.GetChunk(hit.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Warn().Str("chunk_id", hit.ID).Msg("indexed chunk missing from library")
				continue
			}
			return nil, fmt.Errorf("resolving chunk %s: %w", hit.ID, err)
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: hit.Score})
	}

	results = r.dedup.Filter(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// embedQuery retries once on a transient embedding failure.
func (r *SemanticRetriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if errors.Is(err, domain.ErrEmbeddingService) {
		log.Warn().Err(err).Msg("query embedding failed, retrying once")
		vectors, err = r.embedder.Embed(ctx, []string{query})
	}
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: expected 1 vector, got %d", len(vectors))
	}
	return vectors[0], nil
}
