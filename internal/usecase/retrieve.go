package usecase

import (
	"context"

	"github.com/phuslu/log"

	"edumate/internal/adapter/cache"
	"edumate/internal/domain"
	"edumate/internal/port"
)

// RetrieveUseCase fronts the retriever with a query cache.
type RetrieveUseCase struct {
	retriever port.Retriever
	cache     *cache.QueryCache
	topK      int
}

func NewRetrieveUseCase(retriever port.Retriever, queryCache *cache.QueryCache, topK int) *RetrieveUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &RetrieveUseCase{
		retriever: retriever,
		cache:     queryCache,
		topK:      topK,
	}
}

// Retrieve returns the top-k supporting chunks for a query, served from
// cache when the index has not changed since the last identical ask.
func (u *RetrieveUseCase) Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	if u.cache != nil {
		if results, ok := u.cache.Get(query, u.topK); ok {
			log.Debug().Str("query", query).Msg("retrieval cache hit")
			return results, nil
		}
	}

	results, err := u.retriever.Retrieve(ctx, query, u.topK)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		u.cache.Put(query, u.topK, results)
	}
	return results, nil
}

// InvalidateIndex drops cached rankings; called after ingestion rebuilds
// the index.
func (u *RetrieveUseCase) InvalidateIndex() {
	if u.cache != nil {
		u.cache.Invalidate()
	}
}
