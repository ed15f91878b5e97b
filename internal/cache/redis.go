package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = defaultTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, source string) ([]byte, error) {
	data, err := r.client.Get(ctx, cacheKey(source)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

// Set stores body with the base TTL plus up to a fifth of it as jitter, so
// entries written together do not expire together.
func (r RedisCache) Set(ctx context.Context, source string, body []byte) error {
	ttl := r.baseTTL + r.jitter()
	if err := r.client.Set(ctx, cacheKey(source), body, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, source string) error {
	if err := r.client.Del(ctx, cacheKey(source)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) jitter() time.Duration {
	max := int64(r.baseTTL / 5)
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(max))
}

func cacheKey(source string) string {
	return fmt.Sprintf("catalog:%s", source)
}
