// Package quizgen turns extracted text into a quiz with a single
// generative-model call.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/logger"
	"github.com/abhisek/quizcraft/internal/quiz"
)

// Purpose labels synthesis calls in the model audit log.
const Purpose = "quiz-synthesis"

// Synthesizer builds a quiz from source text.
type Synthesizer interface {
	// Synthesize returns a *SynthesisError only when the model service is
	// unreachable. Unusable output yields a shorter or zero-length quiz.
	Synthesize(ctx context.Context, text string) (quiz.Quiz, error)
}

// LLMSynthesizer implements Synthesizer using an llm.Provider.
type LLMSynthesizer struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

func New(provider llm.Provider, cfg Config, log *logger.Logger) *LLMSynthesizer {
	if log == nil {
		log = logger.Nop()
	}
	return &LLMSynthesizer{provider: provider, config: cfg, log: log.With("component", "quizgen")}
}

// itemOutput is a raw item before validation. Numbers are decoded as
// float64 because models sometimes write 1.0 for an integer.
type itemOutput struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndex   *float64 `json:"correctIndex"`
	InitialCode    string   `json:"initialCode"`
	ExpectedOutput string   `json:"expectedOutput"`
	Points         *float64 `json:"points"`
}

func (g *LLMSynthesizer) Synthesize(ctx context.Context, text string) (quiz.Quiz, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(text, g.config)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		if llm.IsContentFailure(err) {
			g.log.Warn("model returned unusable output", "error", err)
			return quiz.Quiz{}, nil
		}
		return quiz.Quiz{}, &SynthesisError{Err: err}
	}

	return g.parse(resp.Text()), nil
}

// parse decodes the response into a quiz, dropping invalid items one by
// one. Unparseable text yields a zero-length quiz.
func (g *LLMSynthesizer) parse(raw string) quiz.Quiz {
	elems, err := splitItems(raw)
	if err != nil {
		g.log.Warn("could not parse model output", "error", err, "response_chars", len(raw))
		return quiz.Quiz{}
	}

	var accepted []quiz.Item
	for i, elem := range elems {
		item, err := g.decodeItem(i, elem)
		if err != nil {
			g.log.Info("dropping item", "index", i, "error", err)
			continue
		}
		if verr := g.validate(item, accepted); verr != nil {
			g.log.Info("dropping item", "index", i, "error", verr)
			continue
		}
		accepted = append(accepted, item)
	}

	q := quiz.Quiz{Items: accepted}
	mc, code := q.Counts()
	g.log.Debug("quiz synthesized", "items", q.Len(), "multiple_choice", mc, "code", code,
		"dropped", len(elems)-q.Len())
	return q
}

func (g *LLMSynthesizer) validate(item quiz.Item, accepted []quiz.Item) *ValidationError {
	for _, v := range g.config.Validators {
		if verr := v.Validate(item, accepted); verr != nil {
			return verr
		}
	}
	return nil
}

func (g *LLMSynthesizer) decodeItem(index int, elem json.RawMessage) (quiz.Item, error) {
	elem, err := normalizeType(elem)
	if err != nil {
		return nil, err
	}
	if err := llm.Validate(ItemSchema, elem); err != nil {
		return nil, err
	}

	var out itemOutput
	if err := json.Unmarshal(elem, &out); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}

	id := strings.TrimSpace(out.ID)
	if id == "" {
		id = fmt.Sprintf("item-%d", index+1)
	}

	switch out.Type {
	case "multiple_choice":
		return &quiz.MultipleChoice{
			ID:           id,
			Question:     strings.TrimSpace(out.Question),
			Options:      out.Options,
			CorrectIndex: int(*out.CorrectIndex),
			Points:       pointsOr(out.Points, g.config.MultipleChoicePoints),
		}, nil
	case "code":
		return &quiz.CodeChallenge{
			ID:             id,
			Question:       strings.TrimSpace(out.Question),
			InitialCode:    out.InitialCode,
			ExpectedOutput: out.ExpectedOutput,
			Points:         pointsOr(out.Points, g.config.CodePoints),
		}, nil
	default:
		return nil, fmt.Errorf("unknown item type %q", out.Type)
	}
}

func pointsOr(p *float64, def int) int {
	if p == nil {
		return def
	}
	return int(*p)
}

// typeAliases maps discriminator spellings models use to the canonical ones.
var typeAliases = map[string]string{
	"multiple_choice": "multiple_choice",
	"multiplechoice":  "multiple_choice",
	"multiple-choice": "multiple_choice",
	"mcq":             "multiple_choice",
	"mc":              "multiple_choice",
	"code":            "code",
	"code_challenge":  "code",
	"codechallenge":   "code",
	"code-challenge":  "code",
	"coding":          "code",
}

// normalizeType rewrites the "type" field to its canonical spelling.
func normalizeType(elem json.RawMessage) (json.RawMessage, error) {
	var obj map[string]any
	if err := json.Unmarshal(elem, &obj); err != nil {
		return nil, fmt.Errorf("item is not an object: %w", err)
	}
	t, ok := obj["type"].(string)
	if !ok {
		return elem, nil
	}
	canon, ok := typeAliases[strings.ToLower(strings.TrimSpace(t))]
	if !ok || canon == t {
		return elem, nil
	}
	obj["type"] = canon
	return json.Marshal(obj)
}
