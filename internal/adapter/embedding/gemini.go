package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.Embedder = (*GeminiEmbedder)(nil)

// GeminiEmbedder generates embeddings with the Gemini API.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
	batchSize int
}

// NewGeminiEmbedder creates a Gemini embedder reading the API key from the
// named environment variable.
func NewGeminiEmbedder(ctx context.Context, apiKeyEnv, model string, dimension, batchSize int) (*GeminiEmbedder, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 100
	}

	return &GeminiEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
		batchSize: batchSize,
	}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := validateInputs(texts); err != nil {
		return nil, err
	}

	var all [][]float32
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}

	return all, nil
}

func (e *GeminiEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	outputDim := int32(e.dimension)
	cfg := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingService, err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", domain.ErrEmbeddingService, len(texts), embeddingCount(result))
	}

	// The API returns embeddings in input order.
	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", domain.ErrEmbeddingService, i)
		}
		if len(emb.Values) != e.dimension {
			return nil, fmt.Errorf("%w: model returned dimension %d, index expects %d", domain.ErrDimensionMismatch, len(emb.Values), e.dimension)
		}
		vectors[i] = emb.Values
	}

	return vectors, nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

func (e *GeminiEmbedder) ModelName() string {
	return e.model
}

// validateInputs rejects empty or blank texts before any network call.
func validateInputs(texts []string) error {
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: cannot embed empty text (input %d)", domain.ErrInvalidInput, i)
		}
	}
	return nil
}
