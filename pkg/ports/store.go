package ports

import (
	"context"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// SessionRepository defines durable keyed storage for session records.
// Get and Put are atomic at the single-record granularity.
type SessionRepository interface {
	// Put persists the record under token, replacing any previous record.
	Put(ctx context.Context, token string, record *domain.Record) error

	// Get retrieves the record for token.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, token string) (*domain.Record, error)

	// Delete removes the record for token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// List returns the tokens of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
