package cache

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/CreativeUnicorns/sharedprefs"
)

const defaultGCInterval = time.Minute

// item represents a single cache item with a value and an expiration time.
type item struct {
	value      []byte
	expiration time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.expiration.IsZero() && now.After(it.expiration)
}

// MemoryCache implements sharedprefs.Cache using an in-memory map.
type MemoryCache struct {
	mu        sync.RWMutex
	items     map[string]item
	closed    bool
	stop      chan struct{} // signals the gc goroutine to stop
	closeOnce sync.Once
}

// NewMemoryCache initializes a MemoryCache and starts a goroutine that
// evicts expired items every minute.
func NewMemoryCache() *MemoryCache {
	return newMemoryCache(defaultGCInterval)
}

func newMemoryCache(gcInterval time.Duration) *MemoryCache {
	cache := &MemoryCache{
		items: make(map[string]item),
		stop:  make(chan struct{}),
	}
	go cache.gc(gcInterval)
	return cache
}

// Get returns a copy of the value under key.
// A missing or expired key yields sharedprefs.ErrNotFound.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, sharedprefs.ErrCacheUnavailable
	}

	it, exists := c.items[key]
	if !exists || it.expired(time.Now()) {
		return nil, sharedprefs.ErrNotFound
	}
	return bytes.Clone(it.value), nil
}

// Set stores a copy of value. A ttl of zero or less never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return sharedprefs.ErrCacheUnavailable
	}

	var expiration time.Time
	if ttl > 0 {
		expiration = time.Now().Add(ttl)
	}
	c.items[key] = item{
		value:      bytes.Clone(value),
		expiration: expiration,
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return sharedprefs.ErrCacheUnavailable
	}
	delete(c.items, key)
	return nil
}

// Len reports how many items are held, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the gc goroutine and drops every item. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)

		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		c.items = make(map[string]item)
	})
	return nil
}

// gc periodically removes expired items.
func (c *MemoryCache) gc(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
		}
	}
}
