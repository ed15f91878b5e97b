package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupStore(t *testing.T, ttl time.Duration, opts ...Option[string]) (*MemoryStore[string], *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore[string](ttl, time.Hour, opts...)
	s.now = clock.Now
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	s, _ := setupStore(t, time.Minute)

	s.Put("a", "alpha")

	v, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", v)
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	s, _ := setupStore(t, time.Minute)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Get_Expired(t *testing.T) {
	var evicted []string
	s, clock := setupStore(t, time.Minute, WithEvictHook(func(id string, _ string) {
		evicted = append(evicted, id)
	}))
	s.Put("a", "alpha")

	clock.Advance(2 * time.Minute)

	_, err := s.Get("a")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, []string{"a"}, evicted)
}

func TestMemoryStore_Get_RefreshesIdleTimer(t *testing.T) {
	s, clock := setupStore(t, time.Minute)
	s.Put("a", "alpha")

	for i := 0; i < 5; i++ {
		clock.Advance(40 * time.Second)
		_, err := s.Get("a")
		require.NoError(t, err)
	}
}

func TestMemoryStore_Expire(t *testing.T) {
	var mu sync.Mutex
	evicted := map[string]string{}
	s, clock := setupStore(t, time.Minute, WithEvictHook(func(id string, v string) {
		mu.Lock()
		defer mu.Unlock()
		evicted[id] = v
	}))

	s.Put("old", "1")
	clock.Advance(50 * time.Second)
	s.Put("fresh", "2")
	clock.Advance(20 * time.Second)

	s.expire()

	assert.Equal(t, 1, s.Len())
	_, err := s.Get("fresh")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"old": "1"}, evicted)
}

func TestMemoryStore_Delete(t *testing.T) {
	s, _ := setupStore(t, time.Minute)
	s.Put("a", "alpha")

	s.Delete("a")
	s.Delete("never-there")

	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_CleanupLoopRuns(t *testing.T) {
	s := NewMemoryStore[int](10*time.Millisecond, 5*time.Millisecond)
	t.Cleanup(func() { s.Close() })

	s.Put("a", 1)

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s, _ := setupStore(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s-%d", i)
			s.Put(id, id)
			v, err := s.Get(id)
			assert.NoError(t, err)
			assert.Equal(t, id, v)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}

func TestNewMemoryStore_Defaults(t *testing.T) {
	s := NewMemoryStore[int](0, 0)
	defer s.Close()

	assert.Equal(t, DefaultIdleTTL, s.ttl)
}
