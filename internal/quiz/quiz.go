package quiz

import "fmt"

// Quiz is an ordered sequence of items. A zero-length quiz is valid and
// means there is nothing to play.
type Quiz struct {
	Items []Item
}

func (q Quiz) Len() int { return len(q.Items) }

func (q Quiz) Empty() bool { return len(q.Items) == 0 }

// TotalPoints is the score of a fully correct play-through.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, it := range q.Items {
		total += it.Worth()
	}
	return total
}

// Counts returns the number of multiple-choice and code items.
func (q Quiz) Counts() (multipleChoice, code int) {
	for _, it := range q.Items {
		Match(it,
			func(*MultipleChoice) struct{} { multipleChoice++; return struct{}{} },
			func(*CodeChallenge) struct{} { code++; return struct{}{} },
		)
	}
	return multipleChoice, code
}

// Validate checks every item's field ranges and that ids are unique.
func (q Quiz) Validate() error {
	seen := make(map[string]bool, len(q.Items))
	for i, it := range q.Items {
		if it == nil {
			return fmt.Errorf("item %d is nil", i)
		}
		if err := CheckItem(it); err != nil {
			return fmt.Errorf("item %d (%s): %w", i, it.ItemID(), err)
		}
		if seen[it.ItemID()] {
			return fmt.Errorf("item %d: duplicate id %q", i, it.ItemID())
		}
		seen[it.ItemID()] = true
	}
	return nil
}

// CheckItem verifies the per-item invariants of a single item.
func CheckItem(item Item) error {
	if item.ItemID() == "" {
		return fmt.Errorf("id is empty")
	}
	if item.Prompt() == "" {
		return fmt.Errorf("question is empty")
	}
	if item.Worth() <= 0 {
		return fmt.Errorf("points must be positive, got %d", item.Worth())
	}
	return Match(item,
		func(mc *MultipleChoice) error {
			if len(mc.Options) < 2 {
				return fmt.Errorf("need at least 2 options, got %d", len(mc.Options))
			}
			if mc.CorrectIndex < 0 || mc.CorrectIndex >= len(mc.Options) {
				return fmt.Errorf("correct index %d out of range [0, %d]", mc.CorrectIndex, len(mc.Options)-1)
			}
			return nil
		},
		func(cc *CodeChallenge) error {
			if cc.ExpectedOutput == "" {
				return fmt.Errorf("expected output is empty")
			}
			return nil
		},
	)
}
