package store

import (
	"sync"
	"time"
)

const (
	// DefaultIdleTTL is how long an untouched session stays alive
	DefaultIdleTTL = 30 * time.Minute

	// DefaultCleanupInterval is how often the background cleanup runs
	DefaultCleanupInterval = time.Minute
)

type entry[V any] struct {
	value      V
	lastAccess time.Time
}

// MemoryStore implements SessionStore with in-memory storage. Sessions idle
// for longer than the TTL are evicted by a background loop.
type MemoryStore[V any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[V]
	ttl     time.Duration
	now     func() time.Time
	onEvict func(id string, v V)

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

type Option[V any] func(*MemoryStore[V])

// WithEvictHook registers fn to run for every session removed by expiry.
func WithEvictHook[V any](fn func(id string, v V)) Option[V] {
	return func(s *MemoryStore[V]) { s.onEvict = fn }
}

// NewMemoryStore creates a store and starts its cleanup loop
func NewMemoryStore[V any](ttl, cleanupInterval time.Duration, opts ...Option[V]) *MemoryStore[V] {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	s := &MemoryStore[V]{
		entries:     make(map[string]*entry[V]),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop(cleanupInterval)

	return s
}

func (s *MemoryStore[V]) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCleanup:
			return
		}
	}
}

// expire removes every session idle for longer than the TTL
func (s *MemoryStore[V]) expire() {
	now := s.now()

	s.mu.Lock()
	var evicted []*entry[V]
	var ids []string
	for id, e := range s.entries {
		if now.Sub(e.lastAccess) > s.ttl {
			delete(s.entries, id)
			evicted = append(evicted, e)
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for i, e := range evicted {
			s.onEvict(ids[i], e.value)
		}
	}
}

func (s *MemoryStore[V]) Get(id string) (V, error) {
	var zero V
	now := s.now()

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return zero, ErrNotFound
	}
	if now.Sub(e.lastAccess) > s.ttl {
		delete(s.entries, id)
		s.mu.Unlock()
		if s.onEvict != nil {
			s.onEvict(id, e.value)
		}
		return zero, ErrExpired
	}
	e.lastAccess = now
	s.mu.Unlock()

	return e.value, nil
}

func (s *MemoryStore[V]) Put(id string, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &entry[V]{value: v, lastAccess: s.now()}
}

func (s *MemoryStore[V]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
}

func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryStore[V]) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
