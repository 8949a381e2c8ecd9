// Package cache provides the in-process response cache that fronts the
// read endpoints. Entries expire after a TTL and are purged wholesale by
// URL prefix when the underlying collection is mutated. The cache lives
// and dies with the server process; nothing is persisted.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Defaults matching the server configuration.
const (
	DefaultTTL           = 300 * time.Second
	DefaultSweepInterval = 60 * time.Second
)

type entry struct {
	body      []byte
	storedAt  time.Time
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// Cache is a process-wide key-value store with per-entry expiration.
// It is owned by the DI container: constructed at server start, stopped
// at shutdown, and injected into the HTTP layer rather than accessed as
// a hidden singleton.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	defaultTTL time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache and starts its background sweep. Non-positive
// durations fall back to the defaults.
func New(defaultTTL, sweepInterval time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}

	go c.sweep(sweepInterval)

	return c
}

// Get returns the stored body and its storage time if the key is present
// and not expired. Expired entries are never returned, whether or not the
// sweep has physically removed them yet.
func (c *Cache) Get(key string) ([]byte, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, time.Time{}, false
	}

	return e.body, e.storedAt, true
}

// Set stores body under key, overwriting any prior entry. A non-positive
// ttl uses the cache default.
func (c *Cache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		body:      body,
		storedAt:  now,
		expiresAt: now.Add(ttl),
	}
}

// Delete removes a single entry. Missing keys are a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// DeleteByPrefix removes every entry whose key starts with prefix and
// returns the number removed. Safe and idempotent when nothing matches.
func (c *Cache) DeleteByPrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of physically present entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Stop terminates the background sweep. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// sweep periodically removes expired entries. Correctness of Get does not
// depend on it; it only bounds memory growth.
func (c *Cache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, e := range c.entries {
				if e.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
