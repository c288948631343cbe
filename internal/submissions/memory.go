package submissions

import (
	"context"
	"sync"
)

// MemoryStore keeps submissions in process memory. It is the default
// backend for local development and tests; records do not survive a
// restart.
type MemoryStore struct {
	mu   sync.RWMutex
	cap  int
	subs []Submission // oldest first
}

// NewMemoryStore returns an empty in-memory store retaining at most cap
// records. A cap of zero or less falls back to DefaultRetentionCap.
func NewMemoryStore(cap int) *MemoryStore {
	if cap <= 0 {
		cap = DefaultRetentionCap
	}
	return &MemoryStore{cap: cap}
}

// Append adds sub and drops the oldest records once the cap is exceeded.
func (s *MemoryStore) Append(_ context.Context, sub Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	if len(s.subs) > s.cap {
		s.subs = append([]Submission(nil), s.subs[len(s.subs)-s.cap:]...)
	}
	return nil
}

// Recent returns up to limit submissions, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.subs) {
		limit = len(s.subs)
	}
	out := make([]Submission, 0, limit)
	for i := len(s.subs) - 1; i >= len(s.subs)-limit; i-- {
		out = append(out, s.subs[i])
	}
	return out, nil
}

// Len reports how many records the store currently holds.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
