package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/quiz"
)

const fullQuizJSON = `[
	{"type": "multiple_choice", "id": "q1", "question": "What does len([1, 2]) return?", "options": ["1", "2", "3"], "correctIndex": 1, "points": 10},
	{"type": "multiple_choice", "id": "q2", "question": "Which keyword defines a function?", "options": ["func", "def"], "correctIndex": 1, "points": 10},
	{"type": "multiple_choice", "id": "q3", "question": "Which type is immutable?", "options": ["list", "dict", "tuple"], "correctIndex": 2, "points": 10},
	{"type": "code", "id": "c1", "question": "Print the sum of 2 and 3.", "initialCode": "# your code\n", "expectedOutput": "5", "points": 20},
	{"type": "code", "id": "c2", "question": "Print hello.", "initialCode": "", "expectedOutput": "hello", "points": 20}
]`

func synthesize(t *testing.T, responses ...llm.MockResponse) (quiz.Quiz, *llm.MockProvider, error) {
	t.Helper()
	mock := llm.NewMockProvider(responses...)
	q, err := New(mock, DefaultConfig(), nil).Synthesize(context.Background(), "Python basics: lists, functions and tuples.")
	return q, mock, err
}

func TestSynthesize_FullQuiz(t *testing.T) {
	q, mock, err := synthesize(t, llm.MockText(fullQuizJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Len() != 5 {
		t.Fatalf("expected 5 items, got %d", q.Len())
	}
	mc, code := q.Counts()
	if mc != 3 || code != 2 {
		t.Errorf("counts = %d mc / %d code, want 3/2", mc, code)
	}
	if q.TotalPoints() != 70 {
		t.Errorf("total points = %d, want 70", q.TotalPoints())
	}
	if err := q.Validate(); err != nil {
		t.Errorf("synthesized quiz is invalid: %v", err)
	}

	first, ok := q.Items[0].(*quiz.MultipleChoice)
	if !ok {
		t.Fatalf("first item is %T", q.Items[0])
	}
	if first.CorrectIndex != 1 || len(first.Options) != 3 {
		t.Errorf("unexpected first item: %+v", first)
	}
	last, ok := q.Items[4].(*quiz.CodeChallenge)
	if !ok {
		t.Fatalf("last item is %T", q.Items[4])
	}
	if last.ExpectedOutput != "hello" {
		t.Errorf("unexpected last item: %+v", last)
	}

	if mock.CallCount() != 1 {
		t.Errorf("expected a single model call, got %d", mock.CallCount())
	}
}

func TestSynthesize_RequestContract(t *testing.T) {
	_, mock, _ := synthesize(t, llm.MockText(`[]`))

	req := mock.LastRequest()
	if req.Schema != nil {
		t.Error("synthesis reads raw text and must not request structured output")
	}
	if req.System == "" {
		t.Error("expected a system prompt")
	}
	msg := req.Messages[0].Content
	for _, want := range []string{
		"3 multiple-choice items and 2 code challenges in python",
		"Python basics: lists, functions and tuples.",
		`"correctIndex"`,
		`"expectedOutput"`,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestSynthesize_Normalization(t *testing.T) {
	one := `[{"type": "code", "id": "c1", "question": "Print 1.", "expectedOutput": "1", "points": 20}]`

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"bare array", one, 1},
		{"json fence", "```json\n" + one + "\n```", 1},
		{"plain fence", "```\n" + one + "\n```", 1},
		{"fence without newline", "```" + one + "```", 1},
		{"prose around array", "Here is your quiz:\n" + one + "\nGood luck!", 1},
		{"bracketed prose after array", "Here is the quiz:\n" + one + "\nLet me know if you want more items [or fewer].", 1},
		{"items wrapper", `{"items": ` + one + `}`, 1},
		{"fenced wrapper", "```json\n{\"items\": " + one + "}\n```", 1},
		{"empty array", "[]", 0},
		{"not json", "Sorry, I cannot help with that.", 0},
		{"truncated json", `[{"type": "code", "id": "c1"`, 0},
		{"object without items", `{"quiz": []}`, 0},
		{"empty response", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _, err := synthesize(t, llm.MockText(tt.raw))
			if err != nil {
				t.Fatalf("unparseable output must not error, got: %v", err)
			}
			if q.Len() != tt.want {
				t.Errorf("got %d items, want %d", q.Len(), tt.want)
			}
		})
	}
}

func TestSynthesize_DropsInvalidItems(t *testing.T) {
	raw := `[
		{"type": "multiple_choice", "id": "ok1", "question": "Q?", "options": ["a", "b"], "correctIndex": 0, "points": 10},
		{"type": "multiple_choice", "id": "one-option", "question": "Q?", "options": ["a"], "correctIndex": 0, "points": 10},
		{"type": "multiple_choice", "id": "bad-index", "question": "Q?", "options": ["a", "b"], "correctIndex": 2, "points": 10},
		{"type": "multiple_choice", "id": "neg-index", "question": "Q?", "options": ["a", "b"], "correctIndex": -1, "points": 10},
		{"type": "multiple_choice", "id": "zero-points", "question": "Q?", "options": ["a", "b"], "correctIndex": 0, "points": 0},
		{"type": "multiple_choice", "id": "blank-question", "question": "   ", "options": ["a", "b"], "correctIndex": 0},
		{"type": "code", "id": "no-output", "question": "Print.", "expectedOutput": ""},
		{"type": "code", "id": "missing-output", "question": "Print."},
		{"type": "essay", "id": "essay", "question": "Discuss."},
		"not an object",
		{"type": "multiple_choice", "id": "ok1", "question": "Duplicate id", "options": ["a", "b"], "correctIndex": 1, "points": 10},
		{"type": "code", "id": "ok2", "question": "Print 2.", "expectedOutput": "2", "points": 20}
	]`

	q, _, err := synthesize(t, llm.MockText(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, it := range q.Items {
		ids = append(ids, it.ItemID())
	}
	if strings.Join(ids, ",") != "ok1,ok2" {
		t.Errorf("kept items = %v, want [ok1 ok2]", ids)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("remaining quiz is invalid: %v", err)
	}
}

func TestSynthesize_Defaults(t *testing.T) {
	raw := `[
		{"type": "MCQ", "question": "Q?", "options": ["a", "b"], "correctIndex": 1.0},
		{"type": "code_challenge", "question": "Print 3.", "expectedOutput": "3"}
	]`

	q, _, err := synthesize(t, llm.MockText(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", q.Len())
	}
	mc := q.Items[0].(*quiz.MultipleChoice)
	if mc.ID != "item-1" || mc.Points != 10 || mc.CorrectIndex != 1 {
		t.Errorf("unexpected multiple choice defaults: %+v", mc)
	}
	code := q.Items[1].(*quiz.CodeChallenge)
	if code.ID != "item-2" || code.Points != 20 {
		t.Errorf("unexpected code defaults: %+v", code)
	}
}

func TestSynthesize_ProviderErrors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantSynthErr bool
	}{
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}, true},
		{"rate limited", &llm.ErrRateLimit{Err: errors.New("429")}, true},
		{"timeout", &llm.ErrProviderUnavailable{Err: context.DeadlineExceeded}, true},
		{"invalid response", &llm.ErrInvalidResponse{Err: errors.New("bad")}, false},
		{"max tokens", &llm.ErrMaxTokensExceeded{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _, err := synthesize(t, llm.MockResponse{Err: tt.err})
			var synthErr *SynthesisError
			if tt.wantSynthErr {
				if !errors.As(err, &synthErr) {
					t.Fatalf("expected SynthesisError, got %T (%v)", err, err)
				}
				if !errors.Is(err, tt.err) {
					t.Errorf("SynthesisError should wrap the provider error")
				}
				return
			}
			if err != nil {
				t.Fatalf("content failures must not error, got %v", err)
			}
			if !q.Empty() {
				t.Errorf("expected zero-length quiz, got %d items", q.Len())
			}
		})
	}
}

func TestSynthesize_Purpose(t *testing.T) {
	var got string
	p := purposeProvider{seen: &got}
	if _, err := New(p, DefaultConfig(), nil).Synthesize(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Purpose {
		t.Errorf("purpose = %q, want %q", got, Purpose)
	}
}

type purposeProvider struct{ seen *string }

func (p purposeProvider) Generate(ctx context.Context, _ llm.Request) (*llm.Response, error) {
	*p.seen = llm.PurposeFrom(ctx)
	return &llm.Response{Content: []byte(`[]`)}, nil
}

func (purposeProvider) ModelID() string { return "purpose" }

func TestSynthesize_OfflineQuiz(t *testing.T) {
	q, err := New(llm.NewOfflineProvider(), DefaultConfig(), nil).Synthesize(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mc, code := q.Counts()
	if mc != 3 || code != 2 {
		t.Errorf("counts = %d mc / %d code, want 3/2", mc, code)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("offline quiz is invalid: %v", err)
	}
}
