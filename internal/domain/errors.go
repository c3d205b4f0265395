package domain

import "errors"

// Error taxonomy. Callers classify failures with errors.Is; adapters wrap
// these sentinels with context via fmt.Errorf and %w.
var (
	// ErrInvalidConfig marks bad chunking/index/provider parameters. Fatal at setup.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingService marks a transient embedding API failure. Retryable.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrInvalidInput marks malformed caller input (empty text, oversized file).
	// Not retryable; the caller must fix the input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch marks index/model dimensionality skew. Fatal.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrUnsupportedFormat marks an unrecognised document type at ingestion.
	// Surfaced per document; batch ingestion skips and continues.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrMalformedGeneration marks model output that could not be parsed into
	// the requested structure after the retry budget was exhausted.
	ErrMalformedGeneration = errors.New("could not generate structured output")

	// ErrNotFound marks a missing document or chunk in the library store.
	ErrNotFound = errors.New("not found")
)
