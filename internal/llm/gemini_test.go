package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := map[string]string{
		"gemini-flash":     "gemini-2.5-flash",
		"gemini-pro":       "gemini-2.5-pro",
		"gemini-2.0-flash": "gemini-2.0-flash",
	}
	for in, want := range tests {
		if got := resolveModel(in, geminiModels); got != want {
			t.Errorf("resolveModel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGeminiSchema_ConvertsItemShapes(t *testing.T) {
	def := map[string]any{
		"oneOf": []any{
			map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":     map[string]any{"const": "multiple_choice"},
					"options":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": 2},
					"question": map[string]any{"type": "string", "minLength": 1},
					"points":   map[string]any{"type": "integer", "minimum": 1},
				},
				"required": []any{"type", "options"},
			},
			map[string]any{"type": "object"},
		},
	}

	s := geminiSchema(def)
	if len(s.AnyOf) != 2 {
		t.Fatalf("expected oneOf to become 2 anyOf branches, got %d", len(s.AnyOf))
	}
	mc := s.AnyOf[0]
	if mc.Type != genai.TypeObject || len(mc.Required) != 2 {
		t.Fatalf("unexpected branch: %+v", mc)
	}
	if kind := mc.Properties["type"]; kind.Type != genai.TypeString || len(kind.Enum) != 1 || kind.Enum[0] != "multiple_choice" {
		t.Errorf("const not mapped to enum: %+v", kind)
	}
	opts := mc.Properties["options"]
	if opts.Type != genai.TypeArray || opts.Items.Type != genai.TypeString {
		t.Errorf("array not mapped: %+v", opts)
	}
	if opts.MinItems == nil || *opts.MinItems != 2 {
		t.Errorf("minItems = %v", opts.MinItems)
	}
	if q := mc.Properties["question"]; q.MinLength == nil || *q.MinLength != 1 {
		t.Errorf("minLength not mapped: %+v", q)
	}
	if pts := mc.Properties["points"]; pts.Minimum == nil || *pts.Minimum != 1 {
		t.Errorf("minimum not mapped: %+v", pts)
	}
}

func TestGeminiProvider_Generate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `[{"id":"q1"}]`}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-flash",
		BaseURL: server.URL + "/",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write quizzes.",
		Messages:  []Message{{Role: RoleUser, Content: "Write a quiz."}},
		MaxTokens: 128,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `[{"id":"q1"}]` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 20 || resp.Model != "gemini-2.5-flash" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Error("system prompt not sent as systemInstruction")
	}
}

func TestGeminiProvider_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 503, "message": "overloaded", "status": "UNAVAILABLE"},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Model: "gemini-pro", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) || unavail.Provider != "gemini" {
		t.Fatalf("expected gemini ErrProviderUnavailable, got: %T (%v)", err, err)
	}
}
