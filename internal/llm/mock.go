package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockText is a canned raw-text response.
func MockText(text string) MockResponse {
	return MockResponse{Content: json.RawMessage(text)}
}

// MockProvider is a deterministic Provider for tests and offline runs. It
// returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	fallback  *MockResponse
	Calls     []Request
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewOfflineProvider returns a MockProvider that answers every request
// with a small built-in quiz, so the CLI can be tried without an API key.
func NewOfflineProvider() *MockProvider {
	return &MockProvider{fallback: &MockResponse{Content: json.RawMessage(offlineQuiz)}}
}

const offlineQuiz = `[
  {"type": "multiple_choice", "id": "offline-1", "question": "Which keyword declares a function in Go?", "options": ["def", "func", "fn", "function"], "correctIndex": 1, "points": 10},
  {"type": "multiple_choice", "id": "offline-2", "question": "What does len(\"go\") return?", "options": ["1", "2", "3"], "correctIndex": 1, "points": 10},
  {"type": "multiple_choice", "id": "offline-3", "question": "Which value is the zero value of a bool?", "options": ["true", "nil", "false"], "correctIndex": 2, "points": 10},
  {"type": "code", "id": "offline-4", "question": "Print the sum of 2 and 3.", "initialCode": "# print the sum\n", "expectedOutput": "5", "points": 20},
  {"type": "code", "id": "offline-5", "question": "Print hello.", "initialCode": "", "expectedOutput": "hello", "points": 20}
]`

// Generate returns the next canned response. Once the queue is drained it
// returns the fallback, if any, or ErrProviderUnavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
	case m.fallback != nil:
		resp = *m.fallback
	default:
		return nil, &ErrProviderUnavailable{Provider: "mock", Err: errors.New("no canned response left")}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastRequest returns the most recent request, or the zero Request.
func (m *MockProvider) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}
	}
	return m.Calls[len(m.Calls)-1]
}

func (m *MockProvider) kind() string { return "mock" }
