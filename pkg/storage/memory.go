package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in a map. Records are copied on the way in and
// out, so callers cannot change stored state.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(_ context.Context, r *Record) error {
	if err := r.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.clone(), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, r := range s.records {
		if f.match(r) {
			out = append(out, r.clone())
		}
	}
	slices.SortFunc(out, newestFirst)
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func (r *Record) clone() *Record {
	c := *r
	c.Heads = slices.Clone(r.Heads)
	c.Order = slices.Clone(r.Order)
	c.Removed = slices.Clone(r.Removed)
	c.Rewired = slices.Clone(r.Rewired)
	c.Dropped = slices.Clone(r.Dropped)
	c.Unresolved = slices.Clone(r.Unresolved)
	c.Document = slices.Clone(r.Document)
	return &c
}

var _ Store = (*MemoryStore)(nil)
