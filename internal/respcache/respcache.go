// Package respcache is the process-local response cache keyed by filter
// fingerprint. It is advisory: callers treat any miss as "compute again" and
// correctness never depends on an entry being present.
package respcache

import (
	"sync"
	"time"

	"github.com/pdclabs/chairview/internal/metrics"
)

// DefaultTTL bounds how long a computed payload may be served.
const DefaultTTL = 10 * time.Minute

// sweepThreshold is the cardinality above which an insert triggers a sweep of
// expired entries. Expiry is the only eviction rule; there is no LRU.
const sweepThreshold = 100

type entry struct {
	payload   any
	expiresAt time.Time
}

// Cache maps fingerprint to payload with a fixed TTL. Inserts are atomic
// replace; concurrent writers for one fingerprint may both compute and the
// last one wins.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New returns an empty cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Lookup returns the payload stored under fp while it is still fresh.
func (c *Cache) Lookup(fp string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[fp]
	c.mu.RUnlock()

	if !ok || !e.expiresAt.After(c.now()) {
		return nil, false
	}
	return e.payload, true
}

// Insert stores payload under fp, then sweeps expired entries if the cache
// has grown past the soft threshold.
func (c *Cache) Insert(fp string, payload any) {
	now := c.now()

	c.mu.Lock()
	c.entries[fp] = entry{payload: payload, expiresAt: now.Add(c.ttl)}

	evicted := 0
	if len(c.entries) > sweepThreshold {
		for key, e := range c.entries {
			if !e.expiresAt.After(now) {
				delete(c.entries, key)
				evicted++
			}
		}
	}
	remaining := len(c.entries)
	c.mu.Unlock()

	metrics.RecordCacheSweep(evicted, remaining)
}

// Len reports the current entry count, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
