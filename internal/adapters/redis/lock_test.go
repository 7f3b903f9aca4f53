package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callguide/roteiro/internal/adapters/redis"
)

func TestLocker_AcquireAndRelease(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "roteiro:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	// Released lock is immediately re-acquirable.
	unlock, err = locker.Lock(ctx, "sess-1", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_BlocksSecondHolder(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "roteiro:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "sess-contended", 5*time.Second)
	require.NoError(t, err)

	// A second acquisition must not succeed while the lock is held.
	shortCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "sess-contended", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	// After release the same key locks again without waiting.
	unlock, err = locker.Lock(ctx, "sess-contended", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_ExpiredLockNotReleasedByOldHolder(t *testing.T) {
	mr, client := newTestClient(t)
	locker := redis.NewLocker(client, "roteiro:")
	ctx := context.Background()

	staleUnlock, err := locker.Lock(ctx, "sess-exp", time.Second)
	require.NoError(t, err)

	// The TTL lapses and another replica takes the lock.
	mr.FastForward(2 * time.Second)
	unlock, err := locker.Lock(ctx, "sess-exp", 5*time.Second)
	require.NoError(t, err)

	// The stale holder's release is a no-op: its unique value no longer
	// matches, so the new holder keeps the lock.
	require.NoError(t, staleUnlock(ctx))

	shortCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(shortCtx, "sess-exp", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
}

func TestLocker_KeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "roteiro:")
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "sess-a", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlockA(ctx) }()

	unlockB, err := locker.Lock(ctx, "sess-b", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, unlockB(ctx))
}
