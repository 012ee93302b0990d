package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{
		APIKey:  "test-key",
		Model:   "claude-sonnet",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

// anthropicMessage replies with a Messages API body made of the given text
// blocks.
func anthropicMessage(stop string, blocks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content := make([]map[string]any, len(blocks))
		for i, b := range blocks {
			content[i] = map[string]any{"type": "text", "text": b}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     content,
			"model":       "claude-sonnet-4-5-20250929",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicFailure(status int, kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "7")
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": kind, "message": kind},
		})
	}
}

func quickRequest() Request {
	return Request{
		System:    "You write quizzes.",
		Messages:  []Message{{Role: RoleUser, Content: "Write a quiz."}},
		MaxTokens: 256,
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestAnthropicProvider_HappyPath(t *testing.T) {
	var sent map[string]any
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&sent)
		anthropicMessage("end_turn", `[{"id":"q1","type":"multiple_choice"}]`)(w, r)
	})

	resp, err := p.Generate(context.Background(), quickRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage != (Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}) {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end" || resp.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if sent["model"] != "claude-sonnet-4-5-20250929" {
		t.Errorf("friendly model name not resolved, sent %v", sent["model"])
	}
	if _, ok := sent["system"]; !ok {
		t.Error("system prompt not sent")
	}
}

func TestAnthropicProvider_JoinsTextBlocks(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicMessage("end_turn", "```json\n[", "]\n```"))

	resp, err := p.Generate(context.Background(), quickRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "```json\n[]\n```" {
		t.Fatalf("unexpected text: %q", resp.Text())
	}
}

func TestAnthropicProvider_NoTextIsInvalid(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicMessage("end_turn"))

	_, err := p.Generate(context.Background(), quickRequest())
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T (%v)", err, err)
	}
}

func TestAnthropicProvider_MaxTokens(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicMessage("max_tokens", `[{"id":"q1","ty`))

	_, err := p.Generate(context.Background(), quickRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
	if string(maxTok.Content) != `[{"id":"q1","ty` {
		t.Errorf("truncated content = %s", maxTok.Content)
	}
}

func TestAnthropicProvider_RateLimit(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicFailure(http.StatusTooManyRequests, "rate_limit_error"))

	_, err := p.Generate(context.Background(), quickRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
	if rl.Provider != "anthropic" || rl.RetryAfter != 7*time.Second {
		t.Errorf("unexpected rate limit error: %+v", rl)
	}
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	calls := 0
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		anthropicFailure(http.StatusInternalServerError, "api_error")(w, r)
	})

	_, err := p.Generate(context.Background(), quickRequest())
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if calls != 1 {
		t.Errorf("SDK retried on its own: %d calls", calls)
	}
}

func TestAnthropicModelMapping(t *testing.T) {
	tests := map[string]string{
		"claude-sonnet":              "claude-sonnet-4-5-20250929",
		"claude-haiku":               "claude-haiku-4-5-20251001",
		"claude-sonnet-4-5-20250929": "claude-sonnet-4-5-20250929",
	}
	for in, want := range tests {
		if got := resolveModel(in, anthropicModels); got != want {
			t.Errorf("resolveModel(%q) = %q, want %q", in, got, want)
		}
	}
}
