package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/udlcoach/pkg/adapters/memory"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, memory.NewStore())
}

func TestMemoryStore_PutIsolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	record := domain.NewRecord("tok", time.Now())
	record.Append(domain.RoleUser, "design", time.Now())
	require.NoError(t, store.Put(ctx, "tok", record))

	// Mutating the caller's record after Put must not leak into the store.
	record.Transcript[0].Text = "mutated"
	record.Context.Subject = "mutated"

	loaded, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "design", loaded.Transcript[0].Text)
	assert.Empty(t, loaded.Context.Subject)
	assert.Equal(t, 1, store.Len())
}
