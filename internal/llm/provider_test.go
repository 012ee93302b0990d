package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizcraft/internal/store"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`[1]`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockText("```json\n[]\n```"),
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text() != `[1]` || resp1.Usage.InputTokens != 10 || resp1.StopReason != "end" {
		t.Fatalf("unexpected first response: %+v", resp1)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != "```json\n[]\n```" {
		t.Fatalf("unexpected second response: %q", resp2.Text())
	}
	if mock.LastRequest().Messages[0].Content != "second" {
		t.Fatalf("expected last request to be recorded")
	}
}

func TestMockProvider_EmptyQueueIsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestTimeoutProvider_DeadlineIsUnavailable(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wrapped DeadlineExceeded, got: %v", err)
	}
}

type recordingEvents struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsCalls(t *testing.T) {
	events := &recordingEvents{err: errors.New("disk full")}
	mock := NewMockProvider(MockText(`[]`))
	p := WithLogging(mock, events, nil)

	ctx := WithPurpose(context.Background(), "quiz-synthesis")
	resp, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	if err != nil {
		t.Fatalf("audit failures must not fail the call: %v", err)
	}
	if resp.Text() != `[]` {
		t.Fatalf("unexpected response: %q", resp.Text())
	}
	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	ev := events.events[0]
	if ev.Purpose != "quiz-synthesis" || !ev.Success || ev.ResponseBody != `[]` {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.RequestBody == "" {
		t.Fatal("expected request body to be captured")
	}
	if ev.Provider != "mock" {
		t.Errorf("provider = %q, want mock", ev.Provider)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "QUIZCRAFT_ANTHROPIC_API_KEY") {
		t.Fatalf("expected missing key error naming the variable, got %v", err)
	}
	cfg.Provider = "mock"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("mock needs no key: %v", err)
	}
	cfg.Provider = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZCRAFT_LLM_PROVIDER", "openai")
	t.Setenv("QUIZCRAFT_OPENAI_API_KEY", "sk-test")
	t.Setenv("QUIZCRAFT_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("timeout = %s, want 45s", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("default attempts = %d, want 1", cfg.Retry.MaxAttempts)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected pricing for gpt-4o-mini")
	}
	got := c.Cost(1_000_000, 1_000_000)
	if got < 0.749 || got > 0.751 {
		t.Fatalf("cost = %f, want 0.75", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}

func TestPurposeFrom_Unlabeled(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unlabeled" {
		t.Errorf("PurposeFrom() = %q, want unlabeled", got)
	}
	if got := PurposeFrom(WithPurpose(context.Background(), "")); got != "unlabeled" {
		t.Errorf("empty purpose = %q, want unlabeled", got)
	}
}

func TestIsContentFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad json")}, true},
		{"truncated", &ErrMaxTokensExceeded{Content: json.RawMessage(`[{"a":`)}, true},
		{"wrapped truncated", fmt.Errorf("synthesis: %w", &ErrMaxTokensExceeded{}), true},
		{"rate limit", &ErrRateLimit{Provider: "openai", Err: errors.New("429")}, false},
		{"unavailable", &ErrProviderUnavailable{Err: context.DeadlineExceeded}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContentFailure(tt.err); got != tt.want {
				t.Errorf("IsContentFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessagesNameProvider(t *testing.T) {
	err := &ErrRateLimit{Provider: "gemini", RetryAfter: 2 * time.Second, Err: errors.New("quota")}
	if got := err.Error(); got != "gemini: rate limited, retry after 2s: quota" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ErrProviderUnavailable{}).Error(); got != "model provider: unavailable" {
		t.Errorf("Error() = %q", got)
	}
}

func TestDiscoverConfig_PriorityOrder(t *testing.T) {
	for _, env := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(env, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("nothing set, nothing discovered")
	}

	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-oai" {
		t.Fatalf("unexpected discovery: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("discovered config invalid: %v", err)
	}
}

func TestNewProvider_MockServesOfflineQuiz(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	for i := 0; i < 2; i++ {
		resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "quiz"}}})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		var items []map[string]any
		if err := json.Unmarshal(resp.Content, &items); err != nil {
			t.Fatalf("offline quiz is not a JSON array: %v", err)
		}
		if len(items) != 5 {
			t.Errorf("got %d items, want 5", len(items))
		}
	}
}
