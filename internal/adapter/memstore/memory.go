// Package memstore provides an in-memory LibraryStore, used in tests and
// anywhere persistence is not wanted.
package memstore

import (
	"fmt"
	"sync"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.LibraryStore = (*MemoryStore)(nil)

type MemoryStore struct {
	mu        sync.RWMutex
	docs      map[string]domain.Document
	bySource  map[string]string
	chunks    map[string]domain.Chunk
	docChunks map[string][]string
	vectors   map[string][]float32
	stats     domain.Stats
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]domain.Document),
		bySource:  make(map[string]string),
		chunks:    make(map[string]domain.Chunk),
		docChunks: make(map[string][]string),
		vectors:   make(map[string][]float32),
	}
}

func (s *MemoryStore) PutDoc(doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	s.bySource[doc.SourceName] = doc.ID
	return nil
}

func (s *MemoryStore) GetDoc(id string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
	}
	return doc, nil
}

func (s *MemoryStore) FindDocBySource(sourceName string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySource[sourceName]
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: source %s", domain.ErrNotFound, sourceName)
	}
	return s.docs[id], nil
}

func (s *MemoryStore) DeleteDoc(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[id]; ok {
		delete(s.bySource, doc.SourceName)
	}
	delete(s.docs, id)
	return nil
}

func (s *MemoryStore) ListDocs() ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *MemoryStore) PutChunks(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
		s.docChunks[chunk.DocID] = append(s.docChunks[chunk.DocID], chunk.ID)
	}
	return nil
}

func (s *MemoryStore) GetChunk(id string) (domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return domain.Chunk{}, fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id)
	}
	return chunk, nil
}

func (s *MemoryStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.docChunks[docID]
	chunks := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := s.chunks[id]; ok {
			chunks = append(chunks, chunk)
		}
	}
	return chunks, nil
}

func (s *MemoryStore) DeleteChunksByDoc(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.docChunks[docID] {
		delete(s.chunks, id)
		delete(s.vectors, id)
	}
	delete(s.docChunks, docID)
	return nil
}

func (s *MemoryStore) PutVector(chunkID string, vector []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[chunkID] = vector
	return nil
}

func (s *MemoryStore) GetVector(chunkID string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vector, ok := s.vectors[chunkID]
	if !ok {
		return nil, fmt.Errorf("%w: vector for chunk %s", domain.ErrNotFound, chunkID)
	}
	return vector, nil
}

func (s *MemoryStore) GetStats() (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

func (s *MemoryStore) UpdateStats(stats domain.Stats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
