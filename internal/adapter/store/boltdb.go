package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.etcd.io/bbolt"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var (
	bucketDocs      = []byte("docs")
	bucketSources   = []byte("sources")
	bucketChunks    = []byte("chunks")
	bucketBlobs     = []byte("blobs")
	bucketDocChunks = []byte("doc_chunks")
	bucketVectors   = []byte("vectors")
	bucketMeta      = []byte("meta")
	keyStats        = []byte("corpus_stats")
	keySchema       = []byte("schema_version")
)

// schemaVersion guards the on-disk layout. A corpus written by an
// incompatible version is cleared rather than misread; rebuilding it only
// costs a re-ingest.
const schemaVersion = 1

var _ port.LibraryStore = (*BoltStore)(nil)

// BoltStore persists the study corpus in a single BoltDB file.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) ensureSchema() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
		}

		if raw := meta.Get(keySchema); raw != nil {
			if v := binary.BigEndian.Uint32(raw); v != schemaVersion {
				for _, b := range dataBuckets() {
					if tx.Bucket(b) != nil {
						if err := tx.DeleteBucket(b); err != nil {
							return err
						}
					}
				}
			}
		}

		for _, b := range dataBuckets() {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}

		ver := make([]byte, 4)
		binary.BigEndian.PutUint32(ver, schemaVersion)
		return meta.Put(keySchema, ver)
	})
}

func dataBuckets() [][]byte {
	return [][]byte{bucketDocs, bucketSources, bucketChunks, bucketBlobs, bucketDocChunks, bucketVectors}
}

func (s *BoltStore) DB() *bbolt.DB {
	return s.db
}

type docMeta struct {
	SourceName  string `json:"source_name"`
	MIMEType    string `json:"mime_type"`
	ContentHash string `json:"content_hash"`
	IngestedAt  int64  `json:"ingested_at"`
}

type chunkMeta struct {
	DocID       string   `json:"doc_id"`
	Seq         int      `json:"seq"`
	StartOffset int      `json:"start_offset"`
	EndOffset   int      `json:"end_offset"`
	Tokens      []string `json:"tokens,omitempty"`
}

func (s *BoltStore) PutDoc(doc domain.Document) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := docMeta{
			SourceName:  doc.SourceName,
			MIMEType:    doc.MIMEType,
			ContentHash: doc.ContentHash,
			IngestedAt:  doc.IngestedAt.Unix(),
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketDocs).Put([]byte(doc.ID), data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketBlobs).Put(docBlobKey(doc.ID), []byte(doc.Text)); err != nil {
			return err
		}
		return tx.Bucket(bucketSources).Put([]byte(doc.SourceName), []byte(doc.ID))
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: document %s", domain.ErrNotFound, id)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		text := tx.Bucket(bucketBlobs).Get(docBlobKey(id))
		doc = domain.Document{
			ID:          id,
			SourceName:  meta.SourceName,
			MIMEType:    meta.MIMEType,
			ContentHash: meta.ContentHash,
			IngestedAt:  time.Unix(meta.IngestedAt, 0),
			Text:        string(text),
		}
		return nil
	})
	return doc, err
}

func (s *BoltStore) FindDocBySource(sourceName string) (domain.Document, error) {
	var id string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketSources).Get([]byte(sourceName))
		if data == nil {
			return fmt.Errorf("%w: source %s", domain.ErrNotFound, sourceName)
		}
		id = string(data)
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return s.GetDoc(id)
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data != nil {
			var meta docMeta
			if err := json.Unmarshal(data, &meta); err == nil {
				tx.Bucket(bucketSources).Delete([]byte(meta.SourceName))
			}
		}
		tx.Bucket(bucketBlobs).Delete(docBlobKey(id))
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		return b.ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, domain.Document{
				ID:          string(k),
				SourceName:  meta.SourceName,
				MIMEType:    meta.MIMEType,
				ContentHash: meta.ContentHash,
				IngestedAt:  time.Unix(meta.IngestedAt, 0),
			})
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) PutChunks(chunks []domain.Chunk) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		docChunks := tx.Bucket(bucketDocChunks)

		byDoc := make(map[string][]string)
		for _, chunk := range chunks {
			meta := chunkMeta{
				DocID:       chunk.DocID,
				Seq:         chunk.Seq,
				StartOffset: chunk.StartOffset,
				EndOffset:   chunk.EndOffset,
				Tokens:      chunk.Tokens,
			}
			data, err := json.Marshal(meta)
			if err != nil {
				return err
			}
			if err := chunkBucket.Put([]byte(chunk.ID), data); err != nil {
				return err
			}
			if err := blobBucket.Put([]byte(chunk.ID), []byte(chunk.Text)); err != nil {
				return err
			}
			byDoc[chunk.DocID] = append(byDoc[chunk.DocID], chunk.ID)
		}

		for docID, ids := range byDoc {
			var chunkIDs []string
			if existing := docChunks.Get([]byte(docID)); existing != nil {
				json.Unmarshal(existing, &chunkIDs)
			}
			chunkIDs = append(chunkIDs, ids...)
			data, err := json.Marshal(chunkIDs)
			if err != nil {
				return err
			}
			if err := docChunks.Put([]byte(docID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) GetChunk(id string) (domain.Chunk, error) {
	var chunk domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketChunks).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: chunk %s", domain.ErrNotFound, id)
		}
		var meta chunkMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		text := tx.Bucket(bucketBlobs).Get([]byte(id))
		chunk = domain.Chunk{
			ID:          id,
			DocID:       meta.DocID,
			Seq:         meta.Seq,
			StartOffset: meta.StartOffset,
			EndOffset:   meta.EndOffset,
			Tokens:      meta.Tokens,
			Text:        string(text),
		}
		return nil
	})
	return chunk, err
}

func (s *BoltStore) GetChunksByDoc(docID string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocChunks).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var chunkIDs []string
		if err := json.Unmarshal(data, &chunkIDs); err != nil {
			return err
		}
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		for _, id := range chunkIDs {
			data := chunkBucket.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta chunkMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				continue
			}
			text := blobBucket.Get([]byte(id))
			chunks = append(chunks, domain.Chunk{
				ID:          id,
				DocID:       meta.DocID,
				Seq:         meta.Seq,
				StartOffset: meta.StartOffset,
				EndOffset:   meta.EndOffset,
				Tokens:      meta.Tokens,
				Text:        string(text),
			})
		}
		return nil
	})
	return chunks, err
}

func (s *BoltStore) DeleteChunksByDoc(docID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docChunks := tx.Bucket(bucketDocChunks)
		data := docChunks.Get([]byte(docID))
		if data == nil {
			return nil
		}
		var chunkIDs []string
		if err := json.Unmarshal(data, &chunkIDs); err != nil {
			return err
		}
		chunkBucket := tx.Bucket(bucketChunks)
		blobBucket := tx.Bucket(bucketBlobs)
		vectorBucket := tx.Bucket(bucketVectors)
		for _, id := range chunkIDs {
			chunkBucket.Delete([]byte(id))
			blobBucket.Delete([]byte(id))
			vectorBucket.Delete([]byte(id))
		}
		return docChunks.Delete([]byte(docID))
	})
}

func (s *BoltStore) PutVector(chunkID string, vector []float32) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Put([]byte(chunkID), encodeVector(vector))
	})
}

func (s *BoltStore) GetVector(chunkID string) ([]float32, error) {
	var vector []float32
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketVectors).Get([]byte(chunkID))
		if data == nil {
			return fmt.Errorf("%w: vector for chunk %s", domain.ErrNotFound, chunkID)
		}
		vector = decodeVector(data)
		return nil
	})
	return vector, err
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// docBlobKey namespaces document text away from chunk text in the shared
// blobs bucket. Chunk IDs are hex, so the prefix cannot collide.
func docBlobKey(docID string) []byte {
	return []byte("doc:" + docID)
}

// Vectors are stored as packed big-endian float32 bits; at hundreds of
// floats per chunk, JSON framing would triple the file size.
func encodeVector(v []float32) []byte {
	data := make([]byte, 4*len(v))
	for i, f := range v {
		binary.BigEndian.PutUint32(data[i*4:], math.Float32bits(f))
	}
	return data
}

func decodeVector(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
	}
	return v
}
