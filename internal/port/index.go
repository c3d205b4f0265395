package port

// IndexEntry is a vector keyed by chunk ID, the unit stored in a VectorIndex.
type IndexEntry struct {
	ID     string
	Vector []float32
}

// IndexResult is one nearest-neighbour hit.
type IndexResult struct {
	ID    string
	Score float64
}

// VectorIndex stores chunk vectors and answers nearest-neighbour queries.
// All vectors in one index share the same dimensionality; the similarity
// metric is declared at creation and consistent across build and query.
type VectorIndex interface {
	// Add inserts or replaces one vector. Fails with
	// domain.ErrDimensionMismatch if the vector width differs from the
	// index's established dimensionality.
	Add(id string, vector []float32) error

	// Search returns up to k entries ranked by similarity, descending.
	// Scores equal within a small epsilon tie-break stably by insertion
	// order.
	Search(query []float32, k int) ([]IndexResult, error)

	// Rebuild atomically replaces the index contents. Concurrent readers
	// observe either the old or the new contents, never a partial build.
	Rebuild(entries []IndexEntry) error

	// Len returns the number of indexed vectors.
	Len() int
}
