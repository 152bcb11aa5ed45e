package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const maxUpdateAttempts = 8

// RedisKV stores document bodies and the history index as plain redis
// strings. A zero ttl keeps keys until they are overwritten.
type RedisKV struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewRedisKV(client *redisv9.Client, ttl time.Duration) *RedisKV {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisKV{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return raw, true, nil
}

func (c *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}

// Update runs fn inside WATCH/MULTI and retries when another client
// changes key before EXEC.
func (c *RedisKV) Update(ctx context.Context, key string, fn func(current []byte, found bool) ([]byte, error)) error {
	txf := func(tx *redisv9.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		found := true
		if errors.Is(err, redisv9.Nil) {
			current, found = nil, false
		} else if err != nil {
			return err
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			pipe.Set(ctx, key, next, c.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := c.client.Watch(ctx, txf, key)
		if errors.Is(err, redisv9.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %s failed: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %s failed: key kept changing after %d attempts", key, maxUpdateAttempts)
}

func (c *RedisKV) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
