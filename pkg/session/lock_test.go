package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// nopRepository accepts everything and stores nothing.
type nopRepository struct{}

func (nopRepository) Put(ctx context.Context, token string, record *domain.Record) error {
	return nil
}
func (nopRepository) Get(ctx context.Context, token string) (*domain.Record, error) {
	return nil, domain.ErrSessionNotFound
}
func (nopRepository) Delete(ctx context.Context, token string) error { return nil }
func (nopRepository) List(ctx context.Context) ([]string, error)     { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopRepository{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		token := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Update(ctx, token, func(ctx context.Context, r *domain.Record) error { return nil })
		_ = mgr.Delete(ctx, token)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
}
