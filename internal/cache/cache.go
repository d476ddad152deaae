// AngelaMos | 2026
// cache.go

// Package cache provides the id-keyed entity cache consumed by the
// repositories. The cache is advisory: a miss always falls through to the
// store, and every write path invalidates the entry for the touched id
// before the store write so readers never observe a committed write behind
// a stale snapshot.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/penward/marketplace/internal/config"
)

type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool)
	Put(ctx context.Context, key string, value T)
	Invalidate(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// New builds the configured cache backend for one entity type. The
// namespace keeps entity types from colliding on a shared Redis.
func New[T any](
	cfg config.CacheConfig,
	rdb *redis.Client,
	namespace string,
) (Cache[T], error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory[T](cfg.Size, cfg.TTL), nil
	case "redis":
		return NewRedis[T](rdb, namespace, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Memory is a bounded LRU with per-entry TTL. Eviction caps memory growth;
// the TTL is a second line of defence, not a substitute for invalidation.
type Memory[T any] struct {
	lru *expirable.LRU[string, T]
}

func NewMemory[T any](size int, ttl time.Duration) *Memory[T] {
	return &Memory[T]{
		lru: expirable.NewLRU[string, T](size, nil, ttl),
	}
}

func (m *Memory[T]) Get(_ context.Context, key string) (T, bool) {
	return m.lru.Get(key)
}

func (m *Memory[T]) Put(_ context.Context, key string, value T) {
	m.lru.Add(key, value)
}

func (m *Memory[T]) Invalidate(_ context.Context, key string) {
	m.lru.Remove(key)
}

func (m *Memory[T]) Clear(_ context.Context) {
	m.lru.Purge()
}
