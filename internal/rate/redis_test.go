package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCounter(t *testing.T, window time.Duration) (*RedisCounter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounter(client, "test:", window), mr
}

func TestRedisCounter_IncrementAndWindow(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCounter(t, time.Minute)

	for i := int64(1); i <= 3; i++ {
		n, err := c.Increment(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, err := c.Attempts(ctx, "k")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	ttl, err := c.RemainingWindow(ctx, "k")
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 1)
	assert.True(t, mr.Exists("test:k"))

	// la ventana no se extiende con cada hit
	mr.FastForward(30 * time.Second)
	_, err = c.Increment(ctx, "k")
	require.NoError(t, err)
	ttl, _ = c.RemainingWindow(ctx, "k")
	assert.LessOrEqual(t, ttl, 30*time.Second)

	mr.FastForward(31 * time.Second)
	n, err = c.Attempts(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCounter_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCounter(t, time.Minute)

	_, _ = c.Increment(ctx, "k")
	require.NoError(t, c.Clear(ctx, "k"))

	n, err := c.Attempts(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)

	ttl, err := c.RemainingWindow(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, ttl)
}

func TestRedisCounter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCounter(t, time.Minute)

	_, _ = c.Increment(ctx, "a")
	_, _ = c.Increment(ctx, "a")
	n, _ := c.Increment(ctx, "b")
	assert.EqualValues(t, 1, n)
}

func TestRedisCounter_PingFailsWhenDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	c := NewRedisCounter(client, "", time.Minute)

	require.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
