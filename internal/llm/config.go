package llm

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/quizcraft/internal/envutil"
)

// Config holds all model provider configuration.
type Config struct {
	// Provider selects the backend.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retries of transport failures. MaxAttempts of 1
// means a single invocation.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from QUIZCRAFT_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = envutil.String("QUIZCRAFT_LLM_PROVIDER", cfg.Provider)

	cfg.Anthropic.APIKey = envutil.String("QUIZCRAFT_ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.Model = envutil.String("QUIZCRAFT_ANTHROPIC_MODEL", cfg.Anthropic.Model)
	cfg.Anthropic.BaseURL = envutil.String("QUIZCRAFT_ANTHROPIC_BASE_URL", cfg.Anthropic.BaseURL)

	cfg.OpenAI.APIKey = envutil.String("QUIZCRAFT_OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = envutil.String("QUIZCRAFT_OPENAI_MODEL", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = envutil.String("QUIZCRAFT_OPENAI_BASE_URL", cfg.OpenAI.BaseURL)

	cfg.Gemini.APIKey = envutil.String("QUIZCRAFT_GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = envutil.String("QUIZCRAFT_GEMINI_MODEL", cfg.Gemini.Model)
	cfg.Gemini.BaseURL = envutil.String("QUIZCRAFT_GEMINI_BASE_URL", cfg.Gemini.BaseURL)

	cfg.OpenRouter.APIKey = envutil.String("QUIZCRAFT_OPENROUTER_API_KEY", cfg.OpenRouter.APIKey)
	cfg.OpenRouter.Model = envutil.String("QUIZCRAFT_OPENROUTER_MODEL", cfg.OpenRouter.Model)
	cfg.OpenRouter.BaseURL = envutil.String("QUIZCRAFT_OPENROUTER_BASE_URL", cfg.OpenRouter.BaseURL)

	cfg.Retry.MaxAttempts = envutil.Int("QUIZCRAFT_LLM_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Timeout = envutil.Duration("QUIZCRAFT_LLM_TIMEOUT", cfg.Timeout)

	return cfg
}

// discoveryOrder lists the vendors' own key variables, checked in order
// when no QUIZCRAFT_ key is set.
var discoveryOrder = []struct {
	env, provider string
	apply         func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, k string) { c.Gemini.APIKey = k }},
	{"OPENAI_API_KEY", "openai", func(c *Config, k string) { c.OpenAI.APIKey = k }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, k string) { c.Anthropic.APIKey = k }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, k string) { c.OpenRouter.APIKey = k }},
}

// DiscoverConfig returns a Config for the first provider whose vendor key
// variable is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryOrder {
		key := os.Getenv(d.env)
		if key == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = d.provider
		d.apply(&cfg, key)
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	keys := map[string]string{
		"anthropic":  c.Anthropic.APIKey,
		"openai":     c.OpenAI.APIKey,
		"gemini":     c.Gemini.APIKey,
		"openrouter": c.OpenRouter.APIKey,
	}
	if c.Provider == "mock" {
		return nil
	}
	key, known := keys[c.Provider]
	if !known {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("QUIZCRAFT_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
