package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, max int) (*LoginGuard, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginGuard(client, max, time.Minute, 10*time.Minute, testLogger()), mr
}

func TestLoginGuardLocksAfterMaxFailures(t *testing.T) {
	guard, mr := newGuard(t, 3)
	ctx := context.Background()

	require.False(t, guard.Fail(ctx, "10.0.0.1"))
	require.False(t, guard.Fail(ctx, "10.0.0.1"))
	_, locked := guard.Locked(ctx, "10.0.0.1")
	require.False(t, locked)

	require.True(t, guard.Fail(ctx, "10.0.0.1"))
	ttl, locked := guard.Locked(ctx, "10.0.0.1")
	require.True(t, locked)
	require.Greater(t, ttl, time.Duration(0))

	_, locked = guard.Locked(ctx, "10.0.0.2")
	require.False(t, locked)

	mr.FastForward(11 * time.Minute)
	_, locked = guard.Locked(ctx, "10.0.0.1")
	require.False(t, locked)
}

func TestLoginGuardResetClearsHistory(t *testing.T) {
	guard, _ := newGuard(t, 2)
	ctx := context.Background()

	guard.Fail(ctx, "k")
	guard.Reset(ctx, "k")
	require.False(t, guard.Fail(ctx, "k"))

	require.True(t, guard.Fail(ctx, "k"))
	guard.Reset(ctx, "k")
	_, locked := guard.Locked(ctx, "k")
	require.False(t, locked)
}

func TestLoginGuardFailsOpen(t *testing.T) {
	var disabled *LoginGuard
	_, locked := disabled.Locked(context.Background(), "k")
	require.False(t, locked)
	require.False(t, disabled.Fail(context.Background(), "k"))

	guard, mr := newGuard(t, 1)
	mr.Close()
	_, locked = guard.Locked(context.Background(), "k")
	require.False(t, locked)
	require.False(t, guard.Fail(context.Background(), "k"))
}
