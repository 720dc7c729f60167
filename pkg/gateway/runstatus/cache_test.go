package runstatus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisCache(client, time.Hour, nil), mr
}

func TestMemoryCacheGetMiss(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	_, ok, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	closeTime := time.Now().UTC()
	require.NoError(t, c.SetTerminal(context.Background(), "run-1", services.RunStatusCompleted, &closeTime))

	snap, ok, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, services.RunStatusCompleted, snap.Status)
}

func TestRedisCacheGetMiss(t *testing.T) {
	t.Parallel()
	c, mr := newTestRedisCache(t)
	defer mr.Close()

	_, ok, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheRoundTrip(t *testing.T) {
	t.Parallel()
	c, mr := newTestRedisCache(t)
	defer mr.Close()

	closeTime := time.Now().UTC()
	require.NoError(t, c.SetTerminal(context.Background(), "run-1", services.RunStatusCompleted, &closeTime))

	snap, ok, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, services.RunStatusCompleted, snap.Status)
	require.NotNil(t, snap.CloseTime)
	assert.WithinDuration(t, closeTime, *snap.CloseTime, time.Second)
}

func TestRedisCachePing(t *testing.T) {
	t.Parallel()
	c, mr := newTestRedisCache(t)
	defer mr.Close()

	assert.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestMemoryCacheTerminalWriteIsMonotonic(t *testing.T) {
	t.Parallel()
	c := NewMemoryCache()
	require.NoError(t, c.SetTerminal(context.Background(), "run-1", services.RunStatusCompleted, nil))
	// A second terminal write for the same run must never overwrite the
	// first, even if it names a different status.
	require.NoError(t, c.SetTerminal(context.Background(), "run-1", services.RunStatusFailed, nil))

	snap, ok, err := c.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, services.RunStatusCompleted, snap.Status)
}
