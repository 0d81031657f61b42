package ports_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// MockRepository is a JSON-backed in-memory SessionRepository used to exercise the contract itself.
type MockRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockRepository() *MockRepository {
	return &MockRepository{data: make(map[string][]byte)}
}

func (m *MockRepository) Put(ctx context.Context, token string, record *domain.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[token] = raw
	return nil
}

func (m *MockRepository) Get(ctx context.Context, token string) (*domain.Record, error) {
	m.mu.Lock()
	raw, ok := m.data[token]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var record domain.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (m *MockRepository) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, token)
	return nil
}

func (m *MockRepository) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokens := make([]string, 0, len(m.data))
	for token := range m.data {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func TestSessionRepository_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, NewMockRepository())
}
