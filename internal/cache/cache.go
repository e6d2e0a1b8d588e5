// Package cache keeps list screen results for a short TTL and drops them when
// the underlying resource changes.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is a thread-safe TTL cache.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	// InvalidatePrefix removes every key starting with prefix.
	InvalidatePrefix(prefix string)
	Stats() Stats
}

// Stats holds cache counters.
type Stats struct {
	Hits          int64
	Misses        int64
	Invalidations int64
	CurrentSize   int
}

type entry struct {
	value      any
	expiration time.Time
}

type memoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	stats   Stats
	now     func() time.Time
}

// New returns a memory cache with the given TTL. A zero TTL disables caching.
func New(ttl time.Duration) Cache {
	if ttl <= 0 {
		return noop{}
	}
	return &memoryCache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *memoryCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found {
		c.stats.Misses++
		return nil, false
	}
	if c.now().After(e.expiration) {
		delete(c.entries, key)
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	return e.value, true
}

func (c *memoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiration: c.now().Add(c.ttl)}
}

func (c *memoryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			c.stats.Invalidations++
		}
	}
}

func (c *memoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.CurrentSize = len(c.entries)
	return s
}

type noop struct{}

func (noop) Get(string) (any, bool)  { return nil, false }
func (noop) Set(string, any)         {}
func (noop) InvalidatePrefix(string) {}
func (noop) Stats() Stats            { return Stats{} }
