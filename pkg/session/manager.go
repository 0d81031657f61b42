package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 2 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	repo ports.SessionRepository

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
	token   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiration of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithTokenGenerator overrides token issuance (tests).
func WithTokenGenerator(gen func() string) Option {
	return func(m *Manager) {
		m.token = gen
	}
}

// NewManager creates a new Session Manager with the given repository.
func NewManager(repo ports.SessionRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:    repo,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
		token:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewToken issues a collision-resistant session token (UUIDv4).
func (m *Manager) NewToken() string {
	return m.token()
}

// Now returns the manager's current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(token) after unlocking.
func (m *Manager) acquire(token string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[token]
	if !exists {
		entry = &lockEntry{}
		m.locks[token] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[token]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, token)
	}
}

// Load retrieves an existing session from the repository.
// Reads do not take the token lock: the repository guarantees that a Get
// observes either the record before or after a concurrent Put.
func (m *Manager) Load(ctx context.Context, token string) (*domain.Record, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	return m.repo.Get(ctx, token)
}

// Update runs one turn for token: it loads the record (creating a fresh one
// if the token is unknown), hands a private copy to fn and persists the copy
// only if fn succeeds. On error nothing is written.
func (m *Manager) Update(ctx context.Context, token string, fn func(ctx context.Context, record *domain.Record) error) (*domain.Record, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	var updated *domain.Record
	err := m.WithLock(ctx, token, func(ctx context.Context) error {
		current, err := m.repo.Get(ctx, token)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			current = domain.NewRecord(token, m.now())
			m.logger.Debug("session created", "token", token)
		case err != nil:
			return fmt.Errorf("failed to load session: %w", err)
		}

		work := current.Snapshot()
		if err := fn(ctx, work); err != nil {
			return err
		}

		work.Touch(m.now())
		if err := work.Validate(); err != nil {
			return err
		}
		if err := m.repo.Put(ctx, token, work); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
		updated = work
		return nil
	})
	return updated, err
}

// Reset atomically replaces the session with a fresh record that keeps only the token.
// Returns domain.ErrSessionNotFound if the session does not exist.
func (m *Manager) Reset(ctx context.Context, token string) (*domain.Record, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	var fresh *domain.Record
	err := m.WithLock(ctx, token, func(ctx context.Context) error {
		if _, err := m.repo.Get(ctx, token); err != nil {
			return err
		}
		fresh = domain.NewRecord(token, m.now())
		if err := m.repo.Put(ctx, token, fresh); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("session reset", "token", token)
	return fresh, nil
}

// Delete removes the session from the repository.
func (m *Manager) Delete(ctx context.Context, token string) error {
	return m.WithLock(ctx, token, func(ctx context.Context) error {
		return m.repo.Delete(ctx, token)
	})
}

// List delegates to the repository.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.repo.List(ctx)
}

// Repository returns the underlying session repository.
func (m *Manager) Repository() ports.SessionRepository {
	return m.repo
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, token string, fn func(context.Context) error) error {
	entry := m.acquire(token)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(token)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, token, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"token", token,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
