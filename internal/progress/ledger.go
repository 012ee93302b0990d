package progress

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/quizcraft/internal/kv"
)

const keyPrefix = "completed:"

// Completion is one entry of a learner's ledger.
type Completion struct {
	ContentID   string
	CompletedAt time.Time
}

// Ledger records completed content per learner on top of a SetStore.
// Members are encoded as "contentID|RFC3339" so the set carries the
// completion time while membership is decided by content id alone.
//
// The mutex only orders writers within this process. Stores that
// implement kv.SetAdder get a single-member add, so writers in other
// processes never drop each other's entries; a content id completed twice
// at once may then carry two members, and reads keep the earliest.
type Ledger struct {
	mu    sync.Mutex
	sets  kv.SetStore
	clock func() time.Time
}

func NewLedger(sets kv.SetStore) *Ledger {
	return &Ledger{sets: sets, clock: time.Now}
}

func ledgerKey(learnerID string) string {
	return keyPrefix + learnerID
}

// MarkCompleted adds contentID to the learner's ledger. Marking the same
// content again keeps the original completion time.
func (l *Ledger) MarkCompleted(ctx context.Context, learnerID, contentID string) error {
	if contentID == "" {
		return fmt.Errorf("content id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(learnerID)
	members, err := l.sets.GetSet(ctx, key)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	for _, m := range members {
		if c, ok := decodeMember(m); ok && c.ContentID == contentID {
			return nil
		}
	}

	member := encodeMember(Completion{ContentID: contentID, CompletedAt: l.clock()})
	if adder, ok := l.sets.(kv.SetAdder); ok {
		if err := adder.AddToSet(ctx, key, member); err != nil {
			return fmt.Errorf("writing ledger: %w", err)
		}
		return nil
	}
	members = append(members, member)
	if err := l.sets.PutSet(ctx, key, members); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}

func (l *Ledger) IsCompleted(ctx context.Context, learnerID, contentID string) (bool, error) {
	completed, err := l.Completed(ctx, learnerID)
	if err != nil {
		return false, err
	}
	for _, c := range completed {
		if c.ContentID == contentID {
			return true, nil
		}
	}
	return false, nil
}

// Completed lists the learner's completions, oldest first. Malformed
// members are skipped.
func (l *Ledger) Completed(ctx context.Context, learnerID string) ([]Completion, error) {
	members, err := l.sets.GetSet(ctx, ledgerKey(learnerID))
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	earliest := make(map[string]time.Time, len(members))
	for _, m := range members {
		c, ok := decodeMember(m)
		if !ok {
			continue
		}
		if at, seen := earliest[c.ContentID]; !seen || c.CompletedAt.Before(at) {
			earliest[c.ContentID] = c.CompletedAt
		}
	}
	out := make([]Completion, 0, len(earliest))
	for id, at := range earliest {
		out = append(out, Completion{ContentID: id, CompletedAt: at})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.Before(out[j].CompletedAt)
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out, nil
}

// Reset clears the learner's ledger.
func (l *Ledger) Reset(ctx context.Context, learnerID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sets.PutSet(ctx, ledgerKey(learnerID), nil)
}

func encodeMember(c Completion) string {
	return c.ContentID + "|" + c.CompletedAt.UTC().Format(time.RFC3339)
}

func decodeMember(m string) (Completion, bool) {
	i := strings.LastIndexByte(m, '|')
	if i <= 0 {
		return Completion{}, false
	}
	at, err := time.Parse(time.RFC3339, m[i+1:])
	if err != nil {
		return Completion{}, false
	}
	return Completion{ContentID: m[:i], CompletedAt: at}, true
}
