package quizgen

import (
	"fmt"

	"github.com/abhisek/quizcraft/internal/quiz"
)

// Validator checks a decoded item before it is admitted to the quiz.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in logs, e.g. "structural".
	Name() string

	// Validate checks item against the items accepted so far.
	Validate(item quiz.Item, accepted []quiz.Item) *ValidationError
}

// ValidationError describes why an item was dropped.
type ValidationError struct {
	Validator string
	ItemID    string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: item %q: %s", e.Validator, e.ItemID, e.Message)
}

// StructuralValidator enforces the per-item field ranges.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(item quiz.Item, _ []quiz.Item) *ValidationError {
	if err := quiz.CheckItem(item); err != nil {
		return &ValidationError{Validator: v.Name(), ItemID: item.ItemID(), Message: err.Error()}
	}
	return nil
}

// UniqueIDValidator rejects items whose id was already used.
type UniqueIDValidator struct{}

func (v *UniqueIDValidator) Name() string { return "unique-id" }

func (v *UniqueIDValidator) Validate(item quiz.Item, accepted []quiz.Item) *ValidationError {
	for _, a := range accepted {
		if a.ItemID() == item.ItemID() {
			return &ValidationError{Validator: v.Name(), ItemID: item.ItemID(), Message: "duplicate id"}
		}
	}
	return nil
}
