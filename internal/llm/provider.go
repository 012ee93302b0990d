package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over a hosted generative model.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider asks for structured output and validates the result against
	// it; otherwise Content carries the raw response text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Quiz synthesis sends a single user
	// message carrying the instructions and source text.
	Messages []Message

	// Schema, when set, requests native structured output.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema plus the name and description some providers
// require alongside it.
type Schema struct {
	// Name is kebab-case, e.g. "quiz-item".
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the validated JSON when a schema was requested, or the
	// raw response text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Text returns Content as a plain string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
