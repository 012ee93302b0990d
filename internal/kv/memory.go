package kv

import (
	"context"
	"sort"
	"sync"

	"github.com/patrickmn/go-cache"
)

// MemorySetStore keeps sets in process memory. Entries never expire.
type MemorySetStore struct {
	mu    sync.Mutex // serializes writers
	cache *cache.Cache
}

func NewMemorySetStore() *MemorySetStore {
	return &MemorySetStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemorySetStore) GetSet(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x, found := s.cache.Get(key)
	if !found {
		return []string{}, nil
	}
	members := x.([]string)
	out := make([]string, len(members))
	copy(out, members)
	return out, nil
}

func (s *MemorySetStore) PutSet(ctx context.Context, key string, values []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, values)
	return nil
}

func (s *MemorySetStore) AddToSet(ctx context.Context, key string, values ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var members []string
	if x, found := s.cache.Get(key); found {
		members = x.([]string)
	}
	s.put(key, append(append([]string(nil), members...), values...))
	return nil
}

func (s *MemorySetStore) put(key string, values []string) {
	members := dedupe(values)
	sort.Strings(members)
	s.cache.Set(key, members, cache.NoExpiration)
}
