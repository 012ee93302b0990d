package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func choiceSchema() *Schema {
	return &Schema{
		Name:        "test-choice",
		Description: "A multiple-choice question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question":     map[string]any{"type": "string", "minLength": 1},
				"options":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2},
				"correctIndex": map[string]any{"type": "integer", "minimum": 0},
				"kind":         map[string]any{"type": "string", "enum": []any{"multiple_choice", "code"}},
			},
			"required": []any{"question", "options", "correctIndex"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"2+2?","options":["3","4"],"correctIndex":1,"kind":"multiple_choice"}`, false},
		{"optional omitted", `{"question":"2+2?","options":["3","4"],"correctIndex":0}`, false},
		{"missing required", `{"question":"2+2?","options":["3","4"]}`, true},
		{"wrong type", `{"question":"2+2?","options":["3","4"],"correctIndex":"one"}`, true},
		{"too few options", `{"question":"2+2?","options":["4"],"correctIndex":0}`, true},
		{"bad enum", `{"question":"2+2?","options":["3","4"],"correctIndex":0,"kind":"essay"}`, true},
		{"negative index", `{"question":"2+2?","options":["3","4"],"correctIndex":-1}`, true},
		{"malformed", `{"question":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(choiceSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
				return
			}
			var invErr *ErrInvalidResponse
			if !errors.As(err, &invErr) {
				t.Fatalf("expected ErrInvalidResponse, got: %v", err)
			}
		})
	}
}

func TestValidate_NilSchema(t *testing.T) {
	if err := Validate(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidate_SchemasSharingANameStayApart(t *testing.T) {
	strict := choiceSchema()
	loose := &Schema{Name: strict.Name, Definition: map[string]any{"type": "object"}}
	raw := json.RawMessage(`{"question":"q"}`)

	if err := Validate(loose, raw); err != nil {
		t.Fatalf("loose schema rejected: %v", err)
	}
	if err := Validate(strict, raw); err == nil {
		t.Fatal("strict schema accepted a document missing required fields")
	}
	// Second use hits the compiled entry.
	if err := Validate(loose, raw); err != nil {
		t.Fatalf("loose schema rejected on reuse: %v", err)
	}
}

func TestValidate_BrokenSchemaDefinition(t *testing.T) {
	bad := &Schema{Name: "broken", Definition: map[string]any{"type": 42}}
	err := Validate(bad, json.RawMessage(`{}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %v", err)
	}
}
