package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memory keeps markers in process. They're lost on restart.
type Memory struct {
	cache *cache.Cache
}

var _ Markers = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (m *Memory) Mark(_ context.Context, key string, ttl time.Duration) (bool, error) {
	// Add fails only when the key exists and hasn't expired
	if err := m.cache.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, ttl time.Duration) error {
	m.cache.Set(key, struct{}{}, ttl)
	return nil
}

func (m *Memory) Has(_ context.Context, key string) (bool, error) {
	_, found := m.cache.Get(key)
	return found, nil
}

func (m *Memory) Close() error {
	m.cache.Flush()
	return nil
}
