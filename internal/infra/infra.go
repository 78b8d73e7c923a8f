// Package infra provides shared infrastructure components used across
// the lookup service: TTL caching, rate limiting, and HTTP utilities.
package infra

import (
	"context"
	"sync"
	"time"
)

// --- Bounded in-memory TTL cache ---

// CacheEntry holds a cached value with expiration.
type CacheEntry struct {
	Value     any
	ExpiresAt time.Time
}

// Cache is a thread-safe in-memory cache with per-entry TTL and a bounded
// number of entries. When full, the entry closest to expiry is evicted.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]CacheEntry
	ttl        time.Duration
	maxEntries int
}

// DefaultMaxEntries bounds a cache when no explicit size is given.
const DefaultMaxEntries = 128

// NewCache creates a cache with the given default TTL and the default
// size bound.
func NewCache(ttl time.Duration) *Cache {
	return NewBoundedCache(ttl, DefaultMaxEntries)
}

// NewBoundedCache creates a cache with the given default TTL and maximum
// entry count. maxEntries <= 0 falls back to DefaultMaxEntries.
func NewBoundedCache(ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[string]CacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get retrieves a value from the cache. Returns nil, false if not found or expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Value, true
}

// Set stores a value in the cache with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value in the cache with a custom TTL.
// Writes are full replacements; entries are never mutated in place.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = CacheEntry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// evictLocked removes expired entries, then if still full removes the entry
// closest to expiry. Must be called with mu held.
func (c *Cache) evictLocked() {
	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.ExpiresAt) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}
	var oldestKey string
	var oldestExp time.Time
	for k, v := range c.entries {
		if oldestKey == "" || v.ExpiresAt.Before(oldestExp) {
			oldestKey = k
			oldestExp = v.ExpiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Invalidate removes a key from the cache.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush removes all entries from the cache.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]CacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// --- Rate limiter ---

// RateLimiter is a token bucket: up to capacity requests per window, with
// one token restored every window once the burst is spent.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   int
	capacity int
	window   time.Duration
	refilled time.Time // start of the current refill period
}

// NewRateLimiter creates a rate limiter that allows capacity requests
// per window.
func NewRateLimiter(capacity int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:   capacity,
		capacity: capacity,
		window:   window,
		refilled: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
// When the bucket is empty it sleeps until the next refill is due rather
// than polling.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refillLocked()
		if rl.tokens > 0 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}
		wakeIn := rl.window - time.Since(rl.refilled)
		rl.mu.Unlock()

		if wakeIn <= 0 {
			wakeIn = time.Millisecond
		}
		timer := time.NewTimer(wakeIn)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// refillLocked credits one token per elapsed window, capped at capacity.
// Must be called with mu held.
func (rl *RateLimiter) refillLocked() {
	elapsed := time.Since(rl.refilled)
	if elapsed < rl.window {
		return
	}
	periods := int(elapsed / rl.window)
	rl.tokens += periods
	if rl.tokens > rl.capacity {
		rl.tokens = rl.capacity
	}
	rl.refilled = rl.refilled.Add(time.Duration(periods) * rl.window)
}
