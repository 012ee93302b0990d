package quizgen

import "github.com/abhisek/quizcraft/internal/envutil"

// Config controls the behavior of the LLMSynthesizer.
type Config struct {
	// MultipleChoiceCount and CodeCount are the item counts requested
	// from the model. The model may return fewer; that is not an error.
	MultipleChoiceCount int
	CodeCount           int

	// Default points for items that omit them.
	MultipleChoicePoints int
	CodePoints           int

	// Language is the programming language code challenges are written in.
	Language string

	// Validators run in order on every decoded item. The first failure
	// drops the item.
	Validators []Validator

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Temperature controls output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		MultipleChoiceCount:  3,
		CodeCount:            2,
		MultipleChoicePoints: 10,
		CodePoints:           20,
		Language:             "python",
		Validators: []Validator{
			&StructuralValidator{},
			&UniqueIDValidator{},
		},
		MaxTokens:   4096,
		Temperature: 0.4,
	}
}

func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.MultipleChoiceCount = envutil.Int("QUIZCRAFT_QUIZ_MC_COUNT", cfg.MultipleChoiceCount)
	cfg.CodeCount = envutil.Int("QUIZCRAFT_QUIZ_CODE_COUNT", cfg.CodeCount)
	cfg.MultipleChoicePoints = envutil.Int("QUIZCRAFT_QUIZ_MC_POINTS", cfg.MultipleChoicePoints)
	cfg.CodePoints = envutil.Int("QUIZCRAFT_QUIZ_CODE_POINTS", cfg.CodePoints)
	cfg.MaxTokens = envutil.Int("QUIZCRAFT_QUIZ_MAX_TOKENS", cfg.MaxTokens)
	cfg.Temperature = envutil.Float("QUIZCRAFT_QUIZ_TEMPERATURE", cfg.Temperature)
	return cfg
}
