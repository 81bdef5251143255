package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client)
	locker.newToken = func() string { return "token-1" }
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return locker, mock
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mock := newTestRedisLocker(t)
	ctx := t.Context()

	mock.ExpectSetNX("lock:dispatch:42", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:dispatch:42"}, "token-1").SetVal(int64(1))

	release, ok, err := locker.TryLock(ctx, "dispatch:42", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, release(ctx))
}

func TestRedisLocker_HeldElsewhere(t *testing.T) {
	locker, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("lock:dispatch:42", "token-1", 5*time.Second).SetVal(false)

	release, ok, err := locker.TryLock(t.Context(), "dispatch:42", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
}

func TestRedisLocker_AcquireError(t *testing.T) {
	locker, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("lock:dispatch:42", "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, ok, err := locker.TryLock(t.Context(), "dispatch:42", 5*time.Second)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisLocker_ReleaseAfterExpiry_ReturnsLockLost(t *testing.T) {
	locker, mock := newTestRedisLocker(t)
	ctx := t.Context()

	mock.ExpectSetNX("lock:dispatch:42", "token-1", time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:dispatch:42"}, "token-1").SetVal(int64(0))

	release, ok, err := locker.TryLock(ctx, "dispatch:42", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.ErrorIs(t, release(ctx), ErrLockLost)
}

func TestRedisLocker_RejectsNonPositiveTTL(t *testing.T) {
	locker, _ := newTestRedisLocker(t)

	_, ok, err := locker.TryLock(context.Background(), "dispatch:42", 0)
	require.Error(t, err)
	assert.False(t, ok)
}
