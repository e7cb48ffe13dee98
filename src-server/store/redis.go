package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares markers with the other bots reading the same instance.
type Redis struct {
	client *redis.Client
}

var _ Markers = (*Redis)(nil)

func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("NewRedis: invalid url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedis: can't ping: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Mark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("(*Redis).Mark: %w", err)
	}
	return ok, nil
}

func (r *Redis) Set(ctx context.Context, key string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("(*Redis).Set: %w", err)
	}
	return nil
}

func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("(*Redis).Has: %w", err)
	}
	return n > 0, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
