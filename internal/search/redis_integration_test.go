//go:build integration

package search

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

func TestRedisSequencer(t *testing.T) {
	client := newRedisClient(t)
	seq := NewRedisSequencer(client)
	ctx := context.Background()

	latest, err := seq.IsLatest(ctx, "s1", 1)
	require.NoError(t, err)
	assert.False(t, latest)

	first, err := seq.Next(ctx, "s1")
	require.NoError(t, err)
	second, err := seq.Next(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)

	latest, err = seq.IsLatest(ctx, "s1", first)
	require.NoError(t, err)
	assert.False(t, latest)

	latest, err = seq.IsLatest(ctx, "s1", second)
	require.NoError(t, err)
	assert.True(t, latest)

	ttl, err := client.TTL(ctx, keyPrefix+"s1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewRedisClient_Empty(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}
