package quizgen

import "github.com/abhisek/quizcraft/internal/llm"

// ItemSchema is the contract for a single element of the model's item
// array. Elements are validated one by one so a bad item never spoils the
// rest of the quiz.
var ItemSchema = &llm.Schema{
	Name:        "quiz-item",
	Description: "One multiple-choice or code-challenge quiz item",
	Definition: map[string]any{
		"oneOf": []any{
			multipleChoiceSchema,
			codeChallengeSchema,
		},
	},
}

var multipleChoiceSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{
			"const": "multiple_choice",
		},
		"id": map[string]any{
			"type":        "string",
			"description": "Short identifier unique within the quiz, e.g. \"q1\"",
		},
		"question": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"options": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"minItems": 2,
		},
		"correctIndex": map[string]any{
			"type":        "integer",
			"minimum":     0,
			"description": "Zero-based index into options",
		},
		"points": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
	},
	"required": []any{"type", "question", "options", "correctIndex"},
}

var codeChallengeSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"type": map[string]any{
			"const": "code",
		},
		"id": map[string]any{
			"type": "string",
		},
		"question": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"initialCode": map[string]any{
			"type":        "string",
			"description": "Starter code shown in the editor",
		},
		"expectedOutput": map[string]any{
			"type":        "string",
			"minLength":   1,
			"description": "Exact standard output of a correct solution",
		},
		"points": map[string]any{
			"type":    "integer",
			"minimum": 1,
		},
	},
	"required": []any{"type", "question", "expectedOutput"},
}
