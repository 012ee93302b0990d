package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/quizcraft/internal/logger"
)

// NewProvider creates a Provider from configuration, wrapped as
// caller → timeout → retry → logging → base.
func NewProvider(ctx context.Context, cfg Config, events EventRecorder, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewOfflineProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, events, log)
	retried := WithRetry(logged, cfg.Retry)
	return WithTimeout(retried, cfg.Timeout), nil
}

// NewProviderFromEnv builds a provider from QUIZCRAFT_* variables, falling
// back to DiscoverConfig when no provider key is configured explicitly.
func NewProviderFromEnv(ctx context.Context, events EventRecorder, log *logger.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if os.Getenv("QUIZCRAFT_LLM_PROVIDER") == "" && cfg.Validate() != nil {
		if discovered, ok := DiscoverConfig(); ok {
			discovered.Retry = cfg.Retry
			discovered.Timeout = cfg.Timeout
			cfg = discovered
		}
	}
	return NewProvider(ctx, cfg, events, log)
}
