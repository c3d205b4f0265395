// Package llm adapts external generative model APIs to the LLM port.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"edumate/internal/domain"
	"edumate/internal/port"
)

var _ port.LLM = (*GeminiLLM)(nil)

// GeminiLLM generates text with the Gemini API.
type GeminiLLM struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiLLM creates a Gemini client reading the API key from the named
// environment variable.
func NewGeminiLLM(ctx context.Context, apiKeyEnv, model string, temperature float32) (*GeminiLLM, error) {
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

	return &GeminiLLM{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", domain.ErrInvalidInput)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var sb strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					sb.WriteString(part.Text)
				}
			}
		}
	}

	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text for model %s", g.model)
	}
	return text, nil
}

func (g *GeminiLLM) ModelName() string {
	return g.model
}
