package port

import "edumate/internal/domain"

// LibraryStore persists documents, chunks, and chunk vectors for one corpus.
type LibraryStore interface {
	PutDoc(doc domain.Document) error

	GetDoc(id string) (domain.Document, error)

	// FindDocBySource returns the document previously ingested from the
	// given source name, or domain.ErrNotFound.
	FindDocBySource(sourceName string) (domain.Document, error)

	DeleteDoc(id string) error

	ListDocs() ([]domain.Document, error)

	PutChunks(chunks []domain.Chunk) error

	GetChunk(id string) (domain.Chunk, error)

	// GetChunksByDoc returns a document's chunks in sequence order.
	GetChunksByDoc(docID string) ([]domain.Chunk, error)

	DeleteChunksByDoc(docID string) error

	PutVector(chunkID string, vector []float32) error

	GetVector(chunkID string) ([]float32, error)

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}
