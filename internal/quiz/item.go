// Package quiz defines the items a generated assessment is made of.
package quiz

import "fmt"

// Item is one question in a generated quiz. The set of implementations is
// closed: MultipleChoice and CodeChallenge are the only variants.
type Item interface {
	// ItemID returns the item's identifier, unique within its quiz.
	ItemID() string

	// Prompt returns the question text shown to the learner.
	Prompt() string

	// Worth returns the points awarded for a correct answer.
	Worth() int

	sealed()
}

// MultipleChoice is answered by picking one of Options.
type MultipleChoice struct {
	ID           string
	Question     string
	Options      []string
	CorrectIndex int
	Points       int
}

// CodeChallenge is answered by submitting source code whose standard
// output must equal ExpectedOutput after trimming surrounding whitespace.
type CodeChallenge struct {
	ID             string
	Question       string
	InitialCode    string
	ExpectedOutput string
	Points         int
}

func (m *MultipleChoice) ItemID() string { return m.ID }
func (m *MultipleChoice) Prompt() string { return m.Question }
func (m *MultipleChoice) Worth() int     { return m.Points }
func (*MultipleChoice) sealed()          {}

func (c *CodeChallenge) ItemID() string { return c.ID }
func (c *CodeChallenge) Prompt() string { return c.Question }
func (c *CodeChallenge) Worth() int     { return c.Points }
func (*CodeChallenge) sealed()          {}

// Match dispatches on the concrete item variant. Every variant has its own
// handler argument, so introducing a new variant breaks all callers at
// compile time until they handle it.
func Match[T any](item Item, mc func(*MultipleChoice) T, code func(*CodeChallenge) T) T {
	switch it := item.(type) {
	case *MultipleChoice:
		return mc(it)
	case *CodeChallenge:
		return code(it)
	default:
		panic(fmt.Sprintf("quiz: unknown item type %T", item))
	}
}

// Kind returns a short label for the item variant.
func Kind(item Item) string {
	return Match(item,
		func(*MultipleChoice) string { return "multiple_choice" },
		func(*CodeChallenge) string { return "code" },
	)
}
