package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/udlcoach/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "tok", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:tok"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:tok"))
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := setup(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx, "shared", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	acquired := make(chan struct{})
	go func() {
		unlock2, err := second.Lock(ctx, "shared", 5*time.Second)
		if assert.NoError(t, err) {
			_ = unlock2(ctx)
		}
		close(acquired)
	}()

	require.NoError(t, unlock(ctx))
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second locker never acquired the lock")
	}
}

func TestRedisLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := setup(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "tok", time.Second)
	require.NoError(t, err)

	// Our lease expires and another replica takes the lock.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("test:lock:tok", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:tok")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
