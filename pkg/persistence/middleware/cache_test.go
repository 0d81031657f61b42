package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/persistence/middleware"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, middleware.NewCacheMiddleware()(NewMockStore()))
}

func TestCache_Preload(t *testing.T) {
	ctx := context.Background()
	backing := NewMockStore()
	require.NoError(t, backing.Put(ctx, "a", sampleRecord("a")))
	require.NoError(t, backing.Put(ctx, "b", sampleRecord("b")))

	cache := middleware.NewCachedRepository(backing)
	n, err := cache.Preload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, cache.Len())

	gets := backing.Gets()
	rec, err := cache.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Biology", rec.Context.Subject)
	assert.Equal(t, gets, backing.Gets(), "preloaded reads never reach the store")
}

func TestCache_PreloadListError(t *testing.T) {
	backing := NewMockStore()
	backing.listErr = errors.New("disk gone")
	_, err := middleware.NewCachedRepository(backing).Preload(context.Background())
	assert.Error(t, err)
}

func TestCache_WriteThrough(t *testing.T) {
	ctx := context.Background()
	backing := NewMockStore()
	cache := middleware.NewCachedRepository(backing)

	require.NoError(t, cache.Put(ctx, "t", sampleRecord("t")))
	stored, err := backing.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Biology", stored.Context.Subject)

	backing.putErr = errors.New("write failed")
	changed := sampleRecord("t")
	changed.Context.Subject = "Physics"
	assert.Error(t, cache.Put(ctx, "t", changed))

	rec, err := cache.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Biology", rec.Context.Subject, "failed writes are not cached")

	require.NoError(t, cache.Delete(ctx, "t"))
	assert.Equal(t, 0, cache.Len())
	_, err = cache.Get(ctx, "t")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := middleware.NewCachedRepository(NewMockStore())
	require.NoError(t, cache.Put(ctx, "t", sampleRecord("t")))

	rec, err := cache.Get(ctx, "t")
	require.NoError(t, err)
	rec.Context.Subject = "mutated"
	rec.Transcript[0].Text = "mutated"

	again, err := cache.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Biology", again.Context.Subject)
	assert.Equal(t, "my-secret-sauce", again.Transcript[0].Text)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	backing := NewMockStore()
	key := generateKey(t)
	repo := middleware.Chain(backing,
		middleware.NewCacheMiddleware(),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	require.NoError(t, repo.Put(ctx, "t", sampleRecord("t")))
	stored, err := backing.Get(ctx, "t")
	require.NoError(t, err)
	assert.NotEqual(t, "Biology", stored.Context.Subject, "encryption sits below the cache")

	rec, err := repo.Get(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, "Biology", rec.Context.Subject)
}
