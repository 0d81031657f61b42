package middleware_test

import (
	"context"
	"sync"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	mu   sync.Mutex
	data map[string]*domain.Record

	gets    int
	putErr  error
	listErr error
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Record),
	}
}

func (s *MockStore) Put(ctx context.Context, token string, record *domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.data[token] = record.Snapshot()
	return nil
}

func (s *MockStore) Get(ctx context.Context, token string) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	rec, ok := s.data[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return rec.Snapshot(), nil
}

func (s *MockStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MockStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

var _ ports.SessionRepository = (*MockStore)(nil)
