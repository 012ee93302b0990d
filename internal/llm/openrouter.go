package llm

import (
	"fmt"
	"net/http"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider routes requests through OpenRouter's OpenAI-compatible
// API. Requests carry the attribution headers OpenRouter uses to identify
// the calling app.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	headers := http.Header{}
	headers.Set("X-Title", "quizcraft")
	headers.Set("HTTP-Referer", "https://github.com/abhisek/quizcraft")

	// Model ids are vendor/model slugs and pass through untouched.
	return &OpenRouterProvider{OpenAIProvider: newCompatProvider(compatEndpoint{
		name:    "openrouter",
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		model:   cfg.Model,
		headers: headers,
	})}, nil
}
