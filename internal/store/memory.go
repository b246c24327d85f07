package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// memoryJanitor is how often expired entries are evicted. Reads never return
// an expired entry regardless.
const memoryJanitor = 10 * time.Minute

// Memory is a process-local KV backed by go-cache. State is lost on restart.
type Memory struct {
	c *cache.Cache
}

func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, memoryJanitor)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v.([]byte)...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	exp := cache.NoExpiration
	if ttl > 0 {
		exp = ttl
	}
	m.c.Set(key, append([]byte(nil), value...), exp)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

