// Package kv provides key-addressable set stores for the completion ledger.
package kv

import "context"

// SetStore is a key-addressable store of string sets.
type SetStore interface {
	// GetSet returns the members of key, or an empty slice.
	GetSet(ctx context.Context, key string) ([]string, error)

	// PutSet replaces the members of key.
	PutSet(ctx context.Context, key string, values []string) error
}

// SetAdder is implemented by stores that can add members to a set in one
// atomic step, without rewriting the rest of it.
type SetAdder interface {
	AddToSet(ctx context.Context, key string, values ...string) error
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
