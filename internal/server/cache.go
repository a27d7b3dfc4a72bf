package server

import (
	"sync"
	"time"

	"github.com/ogulcanaydogan/circle-overlap-bench/pkg/types"
)

type cacheEntry struct {
	result    types.Result
	digest    string
	expiresAt time.Time
}

// defaultMaxCacheEntries caps the cache; keys come from client request bodies.
const defaultMaxCacheEntries = 4096

// resultCache keeps scored results by request digest. Expired entries are
// swept on put at most once per TTL or whenever the cache is full, and a
// full cache evicts the entry closest to expiry.
type resultCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	nextSweep  time.Time
	entries    map[string]cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	if ttl <= 0 {
		return nil
	}
	return &resultCache{
		ttl:        ttl,
		maxEntries: defaultMaxCacheEntries,
		entries:    make(map[string]cacheEntry),
	}
}

func (c *resultCache) get(key string, now time.Time) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return cacheEntry{}, false
	}
	if e.expiresAt.After(now) {
		return e, true
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return cacheEntry{}, false
}

func (c *resultCache) put(key string, result types.Result, digest string, now time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, exists := c.entries[key]
	if (!exists && len(c.entries) >= c.maxEntries) || !now.Before(c.nextSweep) {
		c.sweepLocked(now)
		c.nextSweep = now.Add(c.ttl)
	}
	c.entries[key] = cacheEntry{result: result, digest: digest, expiresAt: now.Add(c.ttl)}
}

// sweepLocked drops expired entries and, if the cache is still full, the one
// that would expire first. Caller holds c.mu.
func (c *resultCache) sweepLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.expiresAt
		}
	}
	if len(c.entries) >= c.maxEntries && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
