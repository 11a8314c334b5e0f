package utils

import (
	"sync"
	"time"
)

// CacheItem represents a cached item with expiration
type CacheItem[V any] struct {
	Value      V
	Expiration time.Time
}

// MemoryCache provides in-memory caching with sliding expiration
type MemoryCache[V any] struct {
	items map[string]*CacheItem[V]
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates a new memory cache. Every read of a live item
// pushes its expiration ttl into the future.
func NewMemoryCache[V any](ttl time.Duration, cleanupEvery time.Duration) *MemoryCache[V] {
	cache := &MemoryCache[V]{
		items: make(map[string]*CacheItem[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine
	if cleanupEvery > 0 {
		go cache.cleanupLoop(cleanupEvery)
	}

	return cache
}

// Set stores a value in cache
func (c *MemoryCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &CacheItem[V]{
		Value:      value,
		Expiration: c.now().Add(c.ttl),
	}
}

// Get retrieves a value from cache
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, exists := c.items[key]
	if !exists {
		return zero, false
	}

	now := c.now()
	if now.After(item.Expiration) {
		delete(c.items, key)
		return zero, false
	}
	item.Expiration = now.Add(c.ttl)
	return item.Value, true
}

// GetOrSet returns the cached value for key, storing create() first when
// the key is missing or expired.
func (c *MemoryCache[V]) GetOrSet(key string, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if item, exists := c.items[key]; exists && !now.After(item.Expiration) {
		item.Expiration = now.Add(c.ttl)
		return item.Value
	}

	v := create()
	c.items[key] = &CacheItem[V]{Value: v, Expiration: now.Add(c.ttl)}
	return v
}

// Delete removes an item from cache
func (c *MemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Clear removes all items from cache
func (c *MemoryCache[V]) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*CacheItem[V])
	c.mu.Unlock()
}

// Close stops the cleanup goroutine
func (c *MemoryCache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanupLoop periodically removes expired items
func (c *MemoryCache[V]) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

// cleanup removes expired items
func (c *MemoryCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.Expiration) {
			delete(c.items, key)
		}
	}
}

// Size returns the number of items in cache
func (c *MemoryCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Keys returns all keys in cache
func (c *MemoryCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}

	return keys
}
