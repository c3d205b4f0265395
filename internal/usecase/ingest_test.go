package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edumate/internal/adapter/analyzer"
	"edumate/internal/adapter/chunker"
	"edumate/internal/adapter/embedding"
	"edumate/internal/adapter/index"
	"edumate/internal/adapter/ingest"
	"edumate/internal/adapter/memstore"
	"edumate/internal/domain"
)

type ingestFixture struct {
	uc       *IngestUseCase
	store    *memstore.MemoryStore
	embedder *embedding.MockEmbedder
	index    *index.MemoryIndex
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	store := memstore.NewMemoryStore()
	embedder := embedding.NewMockEmbedder(16)
	idx, err := index.NewMemoryIndex(index.MetricCosine, 0)
	if err != nil {
		t.Fatal(err)
	}

	registry := ingest.NewRegistry(10 << 20)
	registry.Register(ingest.NewPlainText())
	registry.Register(ingest.NewMarkdown())

	tokenizer := analyzer.NewTokenizer()
	textChunker, err := chunker.NewTextChunker(200, 0.15, 40, tokenizer)
	if err != nil {
		t.Fatal(err)
	}

	walker := ingest.NewWalker([]string{"**/*.txt", "**/*.md"}, nil)
	uc := NewIngestUseCase(store, registry, textChunker, embedder, idx, walker, 10, 2, 1)
	return &ingestFixture{uc: uc, store: store, embedder: embedder, index: idx}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngest_SingleFile(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("Photosynthesis converts light into sugar. ", 20))

	result, err := f.uc.IngestPaths(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("IngestPaths() error = %v", err)
	}

	if result.Ingested != 1 {
		t.Errorf("expected 1 ingested, got %d", result.Ingested)
	}
	if result.ChunksCreated == 0 {
		t.Error("expected chunks created")
	}
	if f.index.Len() != result.ChunksCreated {
		t.Errorf("index holds %d vectors, expected %d", f.index.Len(), result.ChunksCreated)
	}

	docs, _ := f.store.ListDocs()
	if len(docs) != 1 {
		t.Fatalf("expected 1 stored document, got %d", len(docs))
	}
	if docs[0].ContentHash == "" {
		t.Error("content hash not recorded")
	}

	stats, _ := f.store.GetStats()
	if stats.TotalDocs != 1 || stats.TotalChunks != result.ChunksCreated {
		t.Errorf("stats not refreshed: %+v", stats)
	}
}

func TestIngest_UnchangedFileSkipsEmbedding(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("The mitochondria is the powerhouse of the cell. ", 10))

	if _, err := f.uc.IngestPaths(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}
	embedCalls := f.embedder.Calls()

	result, err := f.uc.IngestPaths(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}

	if result.Skipped != 1 || result.Ingested != 0 {
		t.Errorf("expected skip, got %+v", result)
	}
	if f.embedder.Calls() != embedCalls {
		t.Errorf("unchanged document triggered %d extra embedding calls", f.embedder.Calls()-embedCalls)
	}
}

func TestIngest_ChangedFileReplacesDocument(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("Original content about cells. ", 10))

	if _, err := f.uc.IngestPaths(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "notes.txt", strings.Repeat("Completely rewritten content about enzymes. ", 10))
	result, err := f.uc.IngestPaths(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}

	if result.Ingested != 1 {
		t.Errorf("expected re-ingestion, got %+v", result)
	}
	docs, _ := f.store.ListDocs()
	if len(docs) != 1 {
		t.Errorf("expected old document replaced, have %d documents", len(docs))
	}
}

// flakyEmbedder delegates to the mock but fails every call while armed.
type flakyEmbedder struct {
	*embedding.MockEmbedder
	fail bool
}

func (e *flakyEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("%w: upstream unavailable", domain.ErrEmbeddingService)
	}
	return e.MockEmbedder.Embed(ctx, texts)
}

func TestIngest_FailedReingestKeepsOldDocument(t *testing.T) {
	store := memstore.NewMemoryStore()
	embedder := &flakyEmbedder{MockEmbedder: embedding.NewMockEmbedder(16)}
	idx, err := index.NewMemoryIndex(index.MetricCosine, 0)
	if err != nil {
		t.Fatal(err)
	}

	registry := ingest.NewRegistry(10 << 20)
	registry.Register(ingest.NewPlainText())
	tokenizer := analyzer.NewTokenizer()
	textChunker, err := chunker.NewTextChunker(200, 0.15, 40, tokenizer)
	if err != nil {
		t.Fatal(err)
	}
	walker := ingest.NewWalker([]string{"**/*.txt"}, nil)
	uc := NewIngestUseCase(store, registry, textChunker, embedder, idx, walker, 10, 2, 1)

	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", strings.Repeat("Original content about cells. ", 10))
	if _, err := uc.IngestPaths(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}

	docs, _ := store.ListDocs()
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after first ingest, got %d", len(docs))
	}
	originalHash := docs[0].ContentHash
	originalVectors := idx.Len()

	// The rewrite fails to embed; the old document must stay queryable.
	writeFile(t, dir, "notes.txt", strings.Repeat("Rewritten content about enzymes. ", 10))
	embedder.fail = true

	result, err := uc.IngestPaths(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("batch must not abort on embedding failure: %v", err)
	}
	if result.Ingested != 0 || len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error and nothing ingested, got %+v", result)
	}

	docs, _ = store.ListDocs()
	if len(docs) != 1 {
		t.Fatalf("old document lost after failed re-ingest: %d docs remain", len(docs))
	}
	if docs[0].ContentHash != originalHash {
		t.Error("old document replaced despite embedding failure")
	}
	if chunks, err := store.GetChunksByDoc(docs[0].ID); err != nil || len(chunks) == 0 {
		t.Errorf("old chunks lost after failed re-ingest: %v", err)
	}
	if idx.Len() != originalVectors {
		t.Errorf("index changed after failed re-ingest: %d vectors, expected %d", idx.Len(), originalVectors)
	}

	// Once the embedder recovers, the rewrite replaces the old document.
	embedder.fail = false
	result, err = uc.IngestPaths(context.Background(), []string{path})
	if err != nil {
		t.Fatal(err)
	}
	if result.Ingested != 1 {
		t.Errorf("expected re-ingestion after recovery, got %+v", result)
	}
	docs, _ = store.ListDocs()
	if len(docs) != 1 || docs[0].ContentHash == originalHash {
		t.Errorf("expected rewritten document after recovery, got %d docs", len(docs))
	}
}

func TestIngest_UnsupportedFileSkipAndContinue(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", strings.Repeat("Valid study notes on matrices. ", 10))
	bad := writeFile(t, dir, "image.xyz", "\x00\x01binary")

	result, err := f.uc.IngestPaths(context.Background(), []string{bad, good})
	if err != nil {
		t.Fatalf("batch must not abort on one bad file: %v", err)
	}

	if result.Ingested != 1 {
		t.Errorf("expected the good file ingested, got %d", result.Ingested)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %v", result.Errors)
	}
}

func TestIngest_DirectoryExpansion(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", strings.Repeat("Alpha notes on thermodynamics. ", 10))
	writeFile(t, dir, "b.md", strings.Repeat("# Beta\n\nNotes on entropy. ", 10))
	writeFile(t, dir, "ignored.bin", "not matched by includes")

	result, err := f.uc.IngestPaths(context.Background(), []string{dir})
	if err != nil {
		t.Fatal(err)
	}

	if result.Ingested != 2 {
		t.Errorf("expected 2 files from directory, got %d", result.Ingested)
	}
}

func TestIngest_ProgressReported(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", strings.Repeat("Notes one. ", 20))
	writeFile(t, dir, "b.txt", strings.Repeat("Notes two. ", 20))

	var calls int
	var lastTotal int
	f.uc.Progress = func(done, total int) {
		calls++
		lastTotal = total
	}

	if _, err := f.uc.IngestPaths(context.Background(), []string{dir}); err != nil {
		t.Fatal(err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("expected progress for 2 files, got calls=%d total=%d", calls, lastTotal)
	}
}

func TestIngest_InvalidatedHookRunsAfterRebuild(t *testing.T) {
	f := newIngestFixture(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", strings.Repeat("Flashcard fodder. ", 20))

	invalidated := false
	f.uc.Invalidated = func() { invalidated = true }

	if _, err := f.uc.IngestPaths(context.Background(), []string{dir}); err != nil {
		t.Fatal(err)
	}
	if !invalidated {
		t.Error("expected invalidation hook after rebuild")
	}
}
