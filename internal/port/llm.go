package port

import "context"

// LLM represents the external generative model. Dispatch is a single
// request/response call; no multi-turn state is retained here.
type LLM interface {
	// Generate produces text for the given prompts. systemPrompt may be
	// empty.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
