// AngelaMos | 2026
// redis.go

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores JSON-encoded entity snapshots under namespace-prefixed keys.
// All failures degrade to a miss or a dropped write; the cache never turns
// a healthy Postgres read into an error.
type Redis[T any] struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedis[T any](
	client *redis.Client,
	namespace string,
	ttl time.Duration,
) *Redis[T] {
	return &Redis[T]{client: client, namespace: namespace, ttl: ttl}
}

func (r *Redis[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("cache get failed", "key", r.key(key), "error", err)
		}
		return zero, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		slog.Warn("cache entry corrupt, dropping", "key", r.key(key), "error", err)
		//nolint:errcheck // best-effort cleanup of a corrupt entry
		_ = r.client.Del(ctx, r.key(key)).Err()
		return zero, false
	}

	return value, true
}

func (r *Redis[T]) Put(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache put marshal failed", "key", r.key(key), "error", err)
		return
	}

	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		slog.Warn("cache put failed", "key", r.key(key), "error", err)
	}
}

func (r *Redis[T]) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		slog.Warn("cache invalidate failed", "key", r.key(key), "error", err)
	}
}

func (r *Redis[T]) Clear(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, r.namespace+":*", 100).Iterator()
	for iter.Next(ctx) {
		//nolint:errcheck // best-effort bulk clear
		_ = r.client.Del(ctx, iter.Val()).Err()
	}
	if err := iter.Err(); err != nil {
		slog.Warn("cache clear failed", "namespace", r.namespace, "error", err)
	}
}

func (r *Redis[T]) key(key string) string {
	return r.namespace + ":" + key
}
