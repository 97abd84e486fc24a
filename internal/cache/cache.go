// Package cache provides the shared caching fabric: bounded TTL caches with
// whole-entry replacement and a registry for coarse invalidation.
//
// Caches here are process-wide, read-mostly structures. Writers always
// replace entire entries, and invalidation is a coarse "clear all" triggered
// by a small number of mutation events (library sync completion, blacklist
// edit) rather than per-key eviction.
package cache

import (
	"sync"
	"time"
)

// entry wraps a cached value with its expiry deadline.
type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is a type-safe bounded TTL cache.
//
// When the cache is full a new Put evicts the entry closest to expiry.
// Reads never mutate entries; expired entries are treated as misses and
// dropped lazily.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	maxSize int

	hits   uint64
	misses uint64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache holding at most maxSize entries, each valid for ttl.
func New[K comparable, V any](maxSize int, ttl time.Duration) *Cache[K, V] {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached value for key, if present and not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Before(e.expires) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, true
	}

	c.mu.Lock()
	c.misses++
	// Re-check under the write lock: a concurrent Put may have stored a
	// fresh entry since the read above, and that one must survive.
	if e, ok := c.entries[key]; ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	var zero V
	return zero, false
}

// Put stores a value, replacing any existing entry wholesale.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = entry[V]{
		value:   value,
		expires: c.now().Add(c.ttl),
	}
}

// evictOldestLocked removes the entry closest to expiry. Caller holds the lock.
func (c *Cache[K, V]) evictOldestLocked() {
	var oldestKey K
	var oldest time.Time
	first := true
	for k, e := range c.entries {
		if first || e.expires.Before(oldest) {
			oldestKey = k
			oldest = e.expires
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// InvalidateAll drops every entry.
func (c *Cache[K, V]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of entries, including any not yet lazily expired.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports cumulative hit/miss counts.
func (c *Cache[K, V]) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
