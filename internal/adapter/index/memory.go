// Package index provides an exact nearest-neighbour vector index. Brute
// force is O(n) per query, which is fine for study-corpus scale; the
// VectorIndex port allows swapping in an approximate structure later.
package index

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"edumate/internal/domain"
	"edumate/internal/port"
)

// Metric identifies the similarity measure, fixed at index creation and
// consistent across build and query.
type Metric string

const (
	MetricCosine Metric = "cosine"
	MetricL2     Metric = "l2"
)

// scoreEpsilon bounds the score difference treated as a tie.
const scoreEpsilon = 1e-9

var _ port.VectorIndex = (*MemoryIndex)(nil)

// MemoryIndex holds vectors in memory and searches them exactly. Rebuild
// swaps the whole entry slice under the write lock, so readers observe
// either the old or the new contents, never a partial build.
type MemoryIndex struct {
	mu        sync.RWMutex
	metric    Metric
	dimension int
	entries   []entry
	byID      map[string]int
}

type entry struct {
	id     string
	vector []float32
}

// NewMemoryIndex creates an index with the given metric. dimension may be
// zero, in which case the first Add or Rebuild establishes it.
func NewMemoryIndex(metric Metric, dimension int) (*MemoryIndex, error) {
	switch metric {
	case MetricCosine, MetricL2:
	default:
		return nil, fmt.Errorf("%w: unknown similarity metric %q", domain.ErrInvalidConfig, metric)
	}
	if dimension < 0 {
		return nil, fmt.Errorf("%w: dimension must not be negative, got %d", domain.ErrInvalidConfig, dimension)
	}
	return &MemoryIndex{
		metric:    metric,
		dimension: dimension,
		byID:      make(map[string]int),
	}, nil
}

// Add inserts or replaces one vector. Replacing keeps the original
// insertion position so tie-break order stays stable.
func (x *MemoryIndex) Add(id string, vector []float32) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.dimension == 0 {
		x.dimension = len(vector)
	}
	if len(vector) != x.dimension {
		return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, x.dimension, len(vector))
	}

	if pos, ok := x.byID[id]; ok {
		x.entries[pos].vector = vector
		return nil
	}

	x.byID[id] = len(x.entries)
	x.entries = append(x.entries, entry{id: id, vector: vector})
	return nil
}

// Search returns up to k entries ranked by similarity, descending. Scores
// within scoreEpsilon of each other keep insertion order.
func (x *MemoryIndex) Search(query []float32, k int) ([]port.IndexResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.dimension != 0 && len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d, index expects %d", domain.ErrDimensionMismatch, len(query), x.dimension)
	}
	if len(x.entries) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		seq   int
		id    string
		score float64
	}

	scores := make([]scored, len(x.entries))
	for i, e := range x.entries {
		scores[i] = scored{seq: i, id: e.id, score: x.similarity(query, e.vector)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if math.Abs(scores[i].score-scores[j].score) > scoreEpsilon {
			return scores[i].score > scores[j].score
		}
		return scores[i].seq < scores[j].seq
	})

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]port.IndexResult, k)
	for i := 0; i < k; i++ {
		results[i] = port.IndexResult{ID: scores[i].id, Score: scores[i].score}
	}
	return results, nil
}

// Rebuild atomically replaces the index contents (copy-then-swap).
func (x *MemoryIndex) Rebuild(items []port.IndexEntry) error {
	entries := make([]entry, 0, len(items))
	byID := make(map[string]int, len(items))

	dimension := 0
	for _, item := range items {
		if dimension == 0 {
			dimension = len(item.Vector)
		}
		if len(item.Vector) != dimension {
			return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dimension, len(item.Vector))
		}
		if _, dup := byID[item.ID]; dup {
			continue
		}
		byID[item.ID] = len(entries)
		entries = append(entries, entry{id: item.ID, vector: item.Vector})
	}

	x.mu.Lock()
	x.entries = entries
	x.byID = byID
	if dimension != 0 {
		x.dimension = dimension
	}
	x.mu.Unlock()
	return nil
}

// Len returns the number of indexed vectors.
func (x *MemoryIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

// Metric returns the similarity metric declared at creation.
func (x *MemoryIndex) Metric() Metric {
	return x.metric
}

// similarity scores a pair of vectors; higher is always better, so the l2
// metric returns negated distance.
func (x *MemoryIndex) similarity(a, b []float32) float64 {
	switch x.metric {
	case MetricL2:
		return -euclideanDistance(a, b)
	default:
		return cosineSimilarity(a, b)
	}
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func euclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
