package memory

import (
	"context"
	"sync"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// Store implements ports.SessionRepository in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Record
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Record),
	}
}

// Put persists a deep copy of the record.
func (s *Store) Put(ctx context.Context, token string, record *domain.Record) error {
	copied := record.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = copied
	return nil
}

// Get returns a copy so callers can't mutate store state directly by pointer.
func (s *Store) Get(ctx context.Context, token string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return record.Snapshot(), nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}

// List returns stored tokens.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := make([]string, 0, len(s.data))
	for token := range s.data {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
