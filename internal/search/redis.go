package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "blooddonor:search:seq:"
	keyTTL    = 24 * time.Hour
)

// NewRedisClient connects to url. Returns nil if the URL is empty.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisSequencer shares counters between replicas.
type RedisSequencer struct {
	client redis.Cmdable
}

func NewRedisSequencer(client redis.Cmdable) *RedisSequencer {
	return &RedisSequencer{client: client}
}

func (s *RedisSequencer) Next(ctx context.Context, scope string) (uint64, error) {
	key := keyPrefix + scope

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to issue search sequence: %w", err)
	}

	return incr.Uint64()
}

func (s *RedisSequencer) IsLatest(ctx context.Context, scope string, seq uint64) (bool, error) {
	current, err := s.client.Get(ctx, keyPrefix+scope).Uint64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read search sequence: %w", err)
	}
	return current == seq, nil
}
