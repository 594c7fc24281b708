// Package cache provides a small in-memory TTL cache. It backs the
// per-tier benefit listings, which are read far more often than the
// benefits themselves change.
package cache

import (
	"sync"
	"time"
)

type item[T any] struct {
	value   T
	validTo time.Time
}

// InMemory is a thread-safe TTL cache keyed by string.
type InMemory[T any] struct {
	mu  sync.RWMutex
	set map[string]item[T]
	ttl time.Duration
}

// New creates a cache whose entries live for ttl. A background sweeper
// drops expired entries so invalidated keys do not pile up.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		set: make(map[string]item[T]),
		ttl: ttl,
	}
	go c.sweep()
	return c
}

// Get returns the cached value for key, or false when absent or stale.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, ok := c.set[key]
	if !ok || time.Now().After(it.validTo) {
		var zero T
		return zero, false
	}
	return it.value, true
}

// Set stores value under key for the configured TTL, replacing any
// previous entry.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.set[key] = item[T]{value: value, validTo: time.Now().Add(c.ttl)}
}

// Delete invalidates key immediately. Benefit mutations call this so
// clients never see a stale listing for a full TTL.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.set, key)
}

func (c *InMemory[T]) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for now := range ticker.C {
		c.mu.Lock()
		for k, it := range c.set {
			if now.After(it.validTo) {
				delete(c.set, k)
			}
		}
		c.mu.Unlock()
	}
}
