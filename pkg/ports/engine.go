package ports

import (
	"context"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// Coach is the session-aware conversational API consumed by the adapters (HTTP, MCP, CLI).
type Coach interface {
	// Send runs one turn. An empty token starts a new session.
	Send(ctx context.Context, token, message string) (*domain.Reply, error)

	// Upload extracts text from a document and runs it as a turn.
	Upload(ctx context.Context, token, name string, data []byte) (*domain.Reply, error)

	// Reset replaces the session with a fresh record, keeping its token.
	Reset(ctx context.Context, token string) (*domain.Record, error)

	// History returns the stored record for token.
	History(ctx context.Context, token string) (*domain.Record, error)

	// Sessions lists the tokens of all stored sessions.
	Sessions(ctx context.Context) ([]string, error)
}
