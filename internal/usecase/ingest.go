// Package usecase wires adapters into the operations the CLI exposes:
// ingesting study material, retrieving support, and running tutor tasks.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"edumate/internal/adapter/ingest"
	"edumate/internal/domain"
	"edumate/internal/port"
)

// IngestUseCase turns files into chunked, embedded, indexed documents.
type IngestUseCase struct {
	library     port.LibraryStore
	ingestor    port.Ingestor
	chunker     port.Chunker
	embedder    port.Embedder
	index       port.VectorIndex
	walker      *ingest.Walker
	batchSize   int
	parallelism int
	maxRetries  int

	// Progress, if set, is called after each file completes.
	Progress func(done, total int)

	// Invalidated, if set, is called after the index is rebuilt.
	Invalidated func()
}

// IngestResult summarises one batch ingestion.
type IngestResult struct {
	Ingested      int
	Skipped       int
	ChunksCreated int
	Errors        []string
}

func NewIngestUseCase(
	library port.LibraryStore,
	ingestor port.Ingestor,
	chunker port.Chunker,
	embedder port.Embedder,
	index port.VectorIndex,
	walker *ingest.Walker,
	batchSize, parallelism, maxRetries int,
) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	if parallelism <= 0 {
		parallelism = 4
	}
	return &IngestUseCase{
		library:     library,
		ingestor:    ingestor,
		chunker:     chunker,
		embedder:    embedder,
		index:       index,
		walker:      walker,
		batchSize:   batchSize,
		parallelism: parallelism,
		maxRetries:  maxRetries,
	}
}

// IngestPaths ingests the given files and directories. Directories are
// expanded through the walker's include/exclude globs. Per-file failures
// are recorded and the batch continues; only infrastructure failures
// (store, index rebuild) abort.
func (u *IngestUseCase) IngestPaths(ctx context.Context, paths []string) (*IngestResult, error) {
	files, err := u.expand(paths)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{}

	type pending struct {
		doc    domain.Document
		chunks []domain.Chunk
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		done int
		sem  = make(chan struct{}, u.parallelism)
		out  = make([]*pending, len(files))
	)

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			p, skipped, err := u.ingestFile(ctx, file)

			mu.Lock()
			defer mu.Unlock()
			done++
			switch {
			case err != nil:
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file, err))
				log.Warn().Str("file", file).Err(err).Msg("skipping document")
			case skipped:
				result.Skipped++
			default:
				out[i] = &pending{doc: p.doc, chunks: p.chunks}
			}
			if u.Progress != nil {
				u.Progress(done, len(files))
			}
		}(i, file)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Persist sequentially; bbolt writes are single-writer anyway.
	for _, p := range out {
		if p == nil {
			continue
		}
		if err := u.persist(p.doc, p.chunks); err != nil {
			return nil, err
		}
		result.Ingested++
		result.ChunksCreated += len(p.chunks)
	}

	if result.Ingested > 0 {
		if err := u.rebuildIndex(); err != nil {
			return nil, err
		}
		if err := u.refreshStats(); err != nil {
			return nil, err
		}
		if u.Invalidated != nil {
			u.Invalidated()
		}
	}

	return result, nil
}

type ingestedDoc struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// ingestFile normalises, chunks, and embeds a single file. skipped is true
// when the source is already ingested with identical content; no embedding
// call is made in that case.
func (u *IngestUseCase) ingestFile(ctx context.Context, path string) (ingestedDoc, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingestedDoc{}, false, err
	}

	sourceName := filepath.ToSlash(path)
	mimeType := u.ingestor.MIMEForSource(sourceName)

	text, err := u.ingestor.Ingest(sourceName, mimeType, data)
	if err != nil {
		return ingestedDoc{}, false, err
	}

	hash := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(hash[:])

	if existing, err := u.library.FindDocBySource(sourceName); err == nil {
		if existing.ContentHash == contentHash {
			return ingestedDoc{}, true, nil
		}
		// Changed content replaces the old document, but only in persist,
		// once embedding has succeeded. Until then the old document stays
		// queryable.
	} else if !errors.Is(err, domain.ErrNotFound) {
		return ingestedDoc{}, false, err
	}

	doc := domain.Document{
		ID:          uuid.NewString(),
		SourceName:  sourceName,
		MIMEType:    mimeType,
		Text:        text,
		ContentHash: contentHash,
		IngestedAt:  time.Now(),
	}

	chunks, err := u.chunker.Chunk(doc)
	if err != nil {
		return ingestedDoc{}, false, err
	}

	if err := u.embedChunks(ctx, chunks); err != nil {
		return ingestedDoc{}, false, err
	}

	return ingestedDoc{doc: doc, chunks: chunks}, false, nil
}

// embedChunks fills chunk embeddings in batches, retrying transient
// embedding failures up to the retry budget.
func (u *IngestUseCase) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += u.batchSize {
		end := start + u.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := u.embedBatch(ctx, texts)
		if err != nil {
			return err
		}
		for i := range batch {
			batch[i].Embedding = vectors[i]
		}
	}
	return nil
}

func (u *IngestUseCase) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		vectors, err := u.embedder.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		if !errors.Is(err, domain.ErrEmbeddingService) {
			return nil, err
		}
		lastErr = err
		log.Warn().Int("attempt", attempt+1).Err(err).Msg("embedding batch failed")
	}
	return nil, lastErr
}

func (u *IngestUseCase) persist(doc domain.Document, chunks []domain.Chunk) error {
	// A previous ingest of the same source is removed here, after the new
	// content embedded successfully. A failed re-ingest therefore leaves
	// the old document, chunks, and vectors intact.
	if existing, err := u.library.FindDocBySource(doc.SourceName); err == nil {
		if err := u.library.DeleteChunksByDoc(existing.ID); err != nil {
			return fmt.Errorf("replacing chunks for %s: %w", doc.SourceName, err)
		}
		if err := u.library.DeleteDoc(existing.ID); err != nil {
			return fmt.Errorf("replacing document %s: %w", doc.SourceName, err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := u.library.PutDoc(doc); err != nil {
		return fmt.Errorf("storing document %s: %w", doc.SourceName, err)
	}
	if err := u.library.PutChunks(chunks); err != nil {
		return fmt.Errorf("storing chunks for %s: %w", doc.SourceName, err)
	}
	for _, chunk := range chunks {
		if err := u.library.PutVector(chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("storing vector for chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// rebuildIndex loads every persisted vector and swaps the index contents
// in one step, so concurrent queries never see a half-built index.
func (u *IngestUseCase) rebuildIndex() error {
	docs, err := u.library.ListDocs()
	if err != nil {
		return err
	}

	var entries []port.IndexEntry
	for _, doc := range docs {
		chunks, err := u.library.GetChunksByDoc(doc.ID)
		if err != nil {
			return err
		}
		for _, chunk := range chunks {
			vector, err := u.library.GetVector(chunk.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return err
			}
			entries = append(entries, port.IndexEntry{ID: chunk.ID, Vector: vector})
		}
	}

	if err := u.index.Rebuild(entries); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	log.Info().Int("vectors", len(entries)).Msg("index rebuilt")
	return nil
}

func (u *IngestUseCase) refreshStats() error {
	docs, err := u.library.ListDocs()
	if err != nil {
		return err
	}

	stats := domain.Stats{
		TotalDocs:   len(docs),
		ChunksBySrc: make(map[string]int),
	}
	for _, doc := range docs {
		chunks, err := u.library.GetChunksByDoc(doc.ID)
		if err != nil {
			return err
		}
		stats.TotalChunks += len(chunks)
		stats.ChunksBySrc[doc.SourceName] = len(chunks)
	}
	stats.TotalVectors = u.index.Len()

	return u.library.UpdateStats(stats)
}

// expand resolves directories through the walker and passes files through.
func (u *IngestUseCase) expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		walked, err := u.walker.Walk(p)
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
		files = append(files, walked...)
	}
	return files, nil
}
