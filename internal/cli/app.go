package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edumate/config"
	"edumate/internal/adapter/analyzer"
	"edumate/internal/adapter/cache"
	"edumate/internal/adapter/chunker"
	"edumate/internal/adapter/embedding"
	"edumate/internal/adapter/index"
	"edumate/internal/adapter/ingest"
	"edumate/internal/adapter/llm"
	"edumate/internal/adapter/retriever"
	"edumate/internal/adapter/store"
	"edumate/internal/domain"
	"edumate/internal/port"
	"edumate/internal/usecase"
)

// app holds the wired components for one command invocation.
type app struct {
	store    *store.BoltStore
	index    *index.MemoryIndex
	embedder port.Embedder
	ingest   *usecase.IngestUseCase
	retrieve *usecase.RetrieveUseCase
	tutor    *usecase.TutorUseCase
}

// newApp opens the corpus store, rebuilds the in-memory index from
// persisted vectors (no embedding calls), and wires the use cases.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewBoltStore(cfg.CorpusDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus store: %w", err)
	}

	idx, err := index.NewMemoryIndex(index.Metric(cfg.Index.Metric), cfg.Embedding.Dimension)
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := loadIndex(st, idx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	embedder = embedding.WithTimeout(embedder, cfg.EmbedTimeout())

	model, err := buildLLM(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	registry := ingest.NewRegistry(cfg.Library.MaxFileBytes)
	registry.Register(ingest.NewPlainText())
	registry.Register(ingest.NewMarkdown())
	registry.Register(ingest.NewPDF())
	registry.Register(ingest.NewDocx())

	tokenizer := analyzer.NewTokenizer()
	textChunker, err := chunker.NewTextChunker(
		cfg.Chunking.ChunkSize,
		cfg.Chunking.OverlapFraction,
		cfg.Chunking.MinChunkSize,
		tokenizer,
	)
	if err != nil {
		st.Close()
		return nil, err
	}

	walker := ingest.NewWalker(cfg.Library.Includes, cfg.Library.Excludes)
	ingestUC := usecase.NewIngestUseCase(
		st, registry, textChunker, embedder, idx, walker,
		cfg.Embedding.BatchSize, cfg.Embedding.Parallelism, cfg.Embedding.MaxRetries,
	)

	sem := retriever.NewSemanticRetriever(embedder, idx, st, cfg.Retrieve.MinScore, cfg.Retrieve.DedupJaccard)
	queryCache := cache.NewQueryCache(cfg.Retrieve.CacheSize, time.Duration(cfg.Retrieve.CacheTTLSeconds)*time.Second)
	retrieveUC := usecase.NewRetrieveUseCase(sem, queryCache, cfg.Retrieve.TopK)
	ingestUC.Invalidated = retrieveUC.InvalidateIndex

	assembler := usecase.NewContextAssembler(st, cfg.Assemble.ContextChars)
	tutorUC, err := usecase.NewTutorUseCase(retrieveUC, assembler, model, cfg.GenerateTimeout())
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		store:    st,
		index:    idx,
		embedder: embedder,
		ingest:   ingestUC,
		retrieve: retrieveUC,
		tutor:    tutorUC,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// loadIndex rebuilds the in-memory index from persisted vectors.
func loadIndex(st *store.BoltStore, idx *index.MemoryIndex) error {
	docs, err := st.ListDocs()
	if err != nil {
		return err
	}

	var entries []port.IndexEntry
	for _, doc := range docs {
		chunks, err := st.GetChunksByDoc(doc.ID)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			vector, err := st.GetVector(chunk.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return err
			}
			entries = append(entries, port.IndexEntry{ID: chunk.ID, Vector: vector})
		}
	}
	return idx.Rebuild(entries)
}

func buildEmbedder(ctx context.Context, cfg *config.Config) (port.Embedder, error) {
	e := cfg.Embedding
	switch e.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedder(ctx, e.APIKeyEnv, e.Model, e.Dimension, e.BatchSize)
	case "openai":
		return embedding.NewOpenAIEmbedder(e.APIKeyEnv, e.Model, e.BaseURL, e.Dimension, e.BatchSize)
	case "mock":
		return embedding.NewMockEmbedder(e.Dimension), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, e.Provider)
	}
}

func buildLLM(ctx context.Context, cfg *config.Config) (port.LLM, error) {
	g := cfg.Generation
	switch g.Provider {
	case "gemini":
		return llm.NewGeminiLLM(ctx, g.APIKeyEnv, g.Model, g.Temperature)
	case "openai":
		return llm.NewOpenAILLM(g.APIKeyEnv, g.BaseURL, g.Model, g.Temperature)
	case "mock":
		return llm.NewMockLLM(), nil
	default:
		return nil, fmt.Errorf("%w: unknown generation provider %q", domain.ErrInvalidConfig, g.Provider)
	}
}
