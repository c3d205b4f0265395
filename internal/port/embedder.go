package port

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts. The output preserves
	// input order, one vector per input text. Empty or blank input text is
	// rejected with domain.ErrInvalidInput; transient API failures wrap
	// domain.ErrEmbeddingService.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
