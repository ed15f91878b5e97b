package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = "https://sheet.example/api/v1/abc"

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func TestGet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(cacheKey(source), `[{"item":"Pen"}]`))

	body, err := cache.Get(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, `[{"item":"Pen"}]`, string(body))
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	body, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, body)
}

func TestSet_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	err := cache.Set(context.Background(), source, []byte(`[]`))
	require.NoError(t, err)

	stored, err := mr.Get(cacheKey(source))
	require.NoError(t, err)
	assert.Equal(t, `[]`, stored)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), source, []byte(`[]`)))

	ttl := mr.TTL(cacheKey(source))
	assert.True(t, ttl >= 10*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 12*time.Minute, "TTL should be base + max jitter")
}

func TestSet_ExpiresAfterTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, cache.Set(context.Background(), source, []byte(`[]`)))
	mr.FastForward(13 * time.Minute)

	_, err := cache.Get(context.Background(), source)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete_Success(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(cacheKey(source), `[]`))
	assert.True(t, mr.Exists(cacheKey(source)))

	require.NoError(t, cache.Delete(context.Background(), source))
	assert.False(t, mr.Exists(cacheKey(source)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _ := setupTestRedis(t)

	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := NewRedisCache(nil, 0)
	assert.Equal(t, defaultTTL, c.baseTTL)
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "catalog:abc", cacheKey("abc"))
}
