package memory

import (
	"context"
	"fmt"
	"sync"

	"cafeprep/internal/core"
	"cafeprep/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps the entry log in process memory. Contents are lost on restart.
type Store struct {
	mu      sync.Mutex
	entries []core.Entry
}

// New returns a store seeded with the given entries.
func New(seed ...core.Entry) *Store {
	return &Store{entries: append([]core.Entry(nil), seed...)}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Entry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrStoreWrite, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:%d", len(s.entries)), nil
}

// LoadAll returns a copy of the log.
func (s *Store) LoadAll(_ context.Context) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Entry(nil), s.entries...), nil
}
