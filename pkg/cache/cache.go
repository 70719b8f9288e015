package cache

import (
	"sync"
	"time"
)

// Cache is a typed key/value store with per-entry expiry
type Cache[V any] interface {
	// Get returns the value and true when key is present and not expired
	Get(key string) (V, bool)

	// Set stores value under key for ttl
	Set(key string, value V, ttl time.Duration)

	// GetOrLoad returns the cached value or calls load once per key even when
	// several goroutines ask concurrently. Errors are not cached.
	GetOrLoad(key string, ttl time.Duration, load func() (V, error)) (V, error)

	Delete(key string)

	// Len returns the number of stored entries, expired ones included until
	// the next cleanup
	Len() int

	// Stop ends the cleanup goroutine
	Stop()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// inflight tracks a load in progress for one key
type inflight[V any] struct {
	done  chan struct{}
	value V
	err   error
}

// TTLCache is an in-memory Cache safe for concurrent use
type TTLCache[V any] struct {
	mu       sync.RWMutex
	entries  map[string]entry[V]
	loading  map[string]*inflight[V]
	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewTTLCache creates a cache that drops expired entries every cleanupInterval
func NewTTLCache[V any](cleanupInterval time.Duration) *TTLCache[V] {
	c := &TTLCache[V]{
		entries: make(map[string]entry[V]),
		loading: make(map[string]*inflight[V]),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	go c.janitor(cleanupInterval)
	return c
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

func (c *TTLCache[V]) GetOrLoad(key string, ttl time.Duration, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.expired(c.now()) {
		c.mu.Unlock()
		return e.value, nil
	}
	if call, ok := c.loading[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.value, call.err
	}
	call := &inflight[V]{done: make(chan struct{})}
	c.loading[key] = call
	c.mu.Unlock()

	// load runs without the lock so slow loaders only block callers of the same key
	call.value, call.err = load()

	c.mu.Lock()
	delete(c.loading, key)
	if call.err == nil {
		c.entries[key] = entry[V]{value: call.value, expiresAt: c.now().Add(ttl)}
	}
	c.mu.Unlock()
	close(call.done)

	return call.value, call.err
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *TTLCache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache[V]) janitor(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *TTLCache[V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
		}
	}
}
