package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"stellarbot/src-server/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRedis connects to REDIS_URL, e.g. redis://localhost:6379/15.
func newRedis(t *testing.T) (*store.Redis, *redis.Client) {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	r, err := store.NewRedis(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	raw := redis.NewClient(opts)
	t.Cleanup(func() { raw.Close() })
	return r, raw
}

// key is unique per run so tests sharing an instance don't collide.
func key(t *testing.T, k string) string {
	t.Helper()
	return "stellarbot-test:" + uuid.NewString() + ":" + k
}

func TestRedisMarkOnce(t *testing.T) {
	ctx := context.Background()
	r, raw := newRedis(t)
	k := key(t, "notice")
	t.Cleanup(func() { raw.Del(ctx, k) })

	first, err := r.Mark(ctx, k, time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := r.Mark(ctx, k, time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	ttl, err := raw.TTL(ctx, k).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestRedisSetAndHas(t *testing.T) {
	ctx := context.Background()
	r, raw := newRedis(t)
	voted, other := key(t, "voted"), key(t, "other")
	t.Cleanup(func() { raw.Del(ctx, voted, other) })

	require.NoError(t, r.Set(ctx, voted, time.Minute))
	// Set refreshes the expiry
	require.NoError(t, r.Set(ctx, voted, time.Hour))

	has, err := r.Has(ctx, voted)
	require.NoError(t, err)
	assert.True(t, has)

	ttl, err := raw.TTL(ctx, voted).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)

	has, err = r.Has(ctx, other)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRedisMarkAfterExpiry(t *testing.T) {
	ctx := context.Background()
	r, raw := newRedis(t)
	k := key(t, "short")
	t.Cleanup(func() { raw.Del(ctx, k) })

	ok, err := r.Mark(ctx, k, 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		has, err := r.Has(ctx, k)
		return err == nil && !has
	}, 2*time.Second, 20*time.Millisecond)

	ok, err = r.Mark(ctx, k, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := store.NewRedis(ctx, "not-a-url")
	assert.ErrorContains(t, err, "invalid url")

	// nothing listens on port 1
	_, err = store.NewRedis(ctx, "redis://127.0.0.1:1/0")
	assert.ErrorContains(t, err, "can't ping")
}
