package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
)

// CachedRepository keeps every record it has seen in memory and writes
// through to the wrapped repository. The wrapped repository stays the
// source of truth for List.
//
// The cache never expires entries, so it must not sit above a store that
// expires records on its own (redis with a TTL).
type CachedRepository struct {
	next ports.SessionRepository

	mu      sync.RWMutex
	records map[string]*domain.Record
}

// NewCacheMiddleware returns a write-through cache middleware.
func NewCacheMiddleware() Middleware {
	return func(next ports.SessionRepository) ports.SessionRepository {
		return NewCachedRepository(next)
	}
}

// NewCachedRepository wraps next with an in-memory write-through cache.
func NewCachedRepository(next ports.SessionRepository) *CachedRepository {
	return &CachedRepository{
		next:    next,
		records: make(map[string]*domain.Record),
	}
}

// Preload loads every stored record into memory. It returns the number of records loaded.
func (c *CachedRepository) Preload(ctx context.Context) (int, error) {
	tokens, err := c.next.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("preload: list sessions: %w", err)
	}
	loaded := 0
	for _, token := range tokens {
		rec, err := c.next.Get(ctx, token)
		if err != nil {
			return loaded, fmt.Errorf("preload: load session %s: %w", token, err)
		}
		c.store(token, rec)
		loaded++
	}
	return loaded, nil
}

// Put writes to the wrapped repository first and caches only on success.
func (c *CachedRepository) Put(ctx context.Context, token string, record *domain.Record) error {
	if err := c.next.Put(ctx, token, record); err != nil {
		return err
	}
	c.store(token, record)
	return nil
}

func (c *CachedRepository) Get(ctx context.Context, token string) (*domain.Record, error) {
	c.mu.RLock()
	rec, ok := c.records[token]
	c.mu.RUnlock()
	if ok {
		return rec.Snapshot(), nil
	}

	rec, err := c.next.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	c.store(token, rec)
	return rec.Snapshot(), nil
}

func (c *CachedRepository) Delete(ctx context.Context, token string) error {
	if err := c.next.Delete(ctx, token); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.records, token)
	c.mu.Unlock()
	return nil
}

func (c *CachedRepository) List(ctx context.Context) ([]string, error) {
	return c.next.List(ctx)
}

// Len returns the number of cached records.
func (c *CachedRepository) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *CachedRepository) store(token string, rec *domain.Record) {
	c.mu.Lock()
	c.records[token] = rec.Snapshot()
	c.mu.Unlock()
}
