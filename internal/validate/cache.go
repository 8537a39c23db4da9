package validate

import (
	"sync"
	"time"
)

// cacheEntry memoizes one validation outcome with its timestamp.
type cacheEntry struct {
	message  string
	cachedAt time.Time
}

// Cache memoizes validation results per normalized mobile. Entries expire
// after ttl and are evicted by a periodic sweep. Writes are last-write-wins,
// so two racing validations of the same mobile converge on one entry.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	entries  map[string]cacheEntry
	verified map[string]bool
}

// NewCache creates a validation cache with the given freshness window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
		verified: make(map[string]bool),
	}
}

// Get returns the cached message for a mobile and whether a fresh entry exists.
func (c *Cache) Get(mobile string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[mobile]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		delete(c.entries, mobile)
		return "", false
	}
	return entry.message, true
}

// Put stores a validation outcome for a mobile.
func (c *Cache) Put(mobile, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mobile] = cacheEntry{message: message, cachedAt: c.now()}
}

// Invalidate drops the entry for a mobile, e.g. after the field was edited.
func (c *Cache) Invalidate(mobile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, mobile)
}

// MarkVerified flags a mobile as pre-verified (an already-confirmed teammate
// from one of the user's existing teams); verified mobiles bypass validation.
func (c *Cache) MarkVerified(mobile string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verified[mobile] = true
}

// IsVerified reports whether a mobile was flagged as pre-verified.
func (c *Cache) IsVerified(mobile string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verified[mobile]
}

// Sweep evicts all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := c.now()
	for mobile, entry := range c.entries {
		if cutoff.Sub(entry.cachedAt) > c.ttl {
			delete(c.entries, mobile)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps the cache on the given interval until the returned
// stop function is called.
func (c *Cache) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
