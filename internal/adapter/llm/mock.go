package llm

import (
	"context"
	"fmt"
	"sync"

	"edumate/internal/port"
)

var _ port.LLM = (*MockLLM)(nil)

// MockLLM returns scripted responses in order, then falls back to echoing
// the user prompt. Calls records every dispatched prompt pair.
type MockLLM struct {
	mu        sync.Mutex
	responses []string
	Calls     []MockCall
}

type MockCall struct {
	System string
	User   string
}

func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{responses: responses}
}

// Queue appends one more scripted response.
func (m *MockLLM) Queue(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
}

func (m *MockLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{System: systemPrompt, User: userPrompt})

	if len(m.responses) > 0 {
		resp := m.responses[0]
		m.responses = m.responses[1:]
		return resp, nil
	}
	return fmt.Sprintf("echo: %s", userPrompt), nil
}

func (m *MockLLM) ModelName() string {
	return "mock"
}
