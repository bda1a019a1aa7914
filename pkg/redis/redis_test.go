package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/storerating-backend/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGuardTest(t *testing.T, maxFailures int64, window time.Duration) (*miniredis.Miniredis, *LoginGuard) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return mr, NewLoginGuard(c, config.LoginGuardConfig{MaxFailures: maxFailures, Window: window})
}

func TestFailureKey_NormalizesEmail(t *testing.T) {
	assert.Equal(t, "login:failures:user@example.com", failureKey("  User@Example.COM "))
}

func TestLoginGuard_BlocksAtLimit(t *testing.T) {
	_, guard := setupGuardTest(t, 3, 15*time.Minute)
	ctx := context.Background()
	email := "guard@example.com"

	blocked, err := guard.Blocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, blocked)

	for want := int64(1); want <= 3; want++ {
		n, err := guard.RecordFailure(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, want, n)

		blocked, err = guard.Blocked(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, want >= 3, blocked, "after %d failures", want)
	}

	blocked, err = guard.Blocked(ctx, "Guard@Example.com ")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestLoginGuard_WindowStartsAtFirstFailure(t *testing.T) {
	mr, guard := setupGuardTest(t, 2, time.Minute)
	ctx := context.Background()
	email := "window@example.com"
	key := failureKey(email)

	_, err := guard.RecordFailure(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(40 * time.Second)
	n, err := guard.RecordFailure(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 20*time.Second, mr.TTL(key))

	blocked, err := guard.Blocked(ctx, email)
	require.NoError(t, err)
	assert.True(t, blocked)

	mr.FastForward(21 * time.Second)
	assert.False(t, mr.Exists(key))
	blocked, err = guard.Blocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, blocked)

	n, err = guard.RecordFailure(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestLoginGuard_Reset(t *testing.T) {
	mr, guard := setupGuardTest(t, 1, time.Minute)
	ctx := context.Background()
	email := "reset@example.com"

	_, err := guard.RecordFailure(ctx, email)
	require.NoError(t, err)
	blocked, err := guard.Blocked(ctx, email)
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, guard.Reset(ctx, email))
	assert.False(t, mr.Exists(failureKey(email)))
	blocked, err = guard.Blocked(ctx, email)
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginGuard_ServerDown(t *testing.T) {
	mr, guard := setupGuardTest(t, 3, time.Minute)
	ctx := context.Background()
	mr.Close()

	_, err := guard.Blocked(ctx, "down@example.com")
	assert.Error(t, err)
	_, err = guard.RecordFailure(ctx, "down@example.com")
	assert.Error(t, err)
}
