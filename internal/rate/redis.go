package rate

import (
	"context"
	"errors"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisCounter: INCR + EXPIRE en el primer hit. Visible para todas las réplicas.
type RedisCounter struct {
	Client *rdb.Client
	Prefix string
	Window time.Duration
}

// NewRedisCounter crea un contador en Redis; las keys llevan prefix.
func NewRedisCounter(client *rdb.Client, prefix string, window time.Duration) *RedisCounter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisCounter{Client: client, Prefix: prefix, Window: window}
}

var _ Counter = (*RedisCounter)(nil)

func (c *RedisCounter) key(k string) string { return c.Prefix + k }

func (c *RedisCounter) Increment(ctx context.Context, key string) (int64, error) {
	k := c.key(key)
	pipe := c.Client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	// Primer hit (o key huérfana sin TTL): arrancar la ventana
	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := c.Client.Expire(ctx, k, c.Window).Err(); err != nil {
			return 0, err
		}
	}
	return incr.Val(), nil
}

func (c *RedisCounter) Attempts(ctx context.Context, key string) (int64, error) {
	n, err := c.Client.Get(ctx, c.key(key)).Int64()
	if errors.Is(err, rdb.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *RedisCounter) RemainingWindow(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.Client.TTL(ctx, c.key(key)).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		// -2: no existe, -1: sin TTL
		return 0, nil
	}
	return ttl, nil
}

func (c *RedisCounter) Clear(ctx context.Context, key string) error {
	return c.Client.Del(ctx, c.key(key)).Err()
}

func (c *RedisCounter) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
