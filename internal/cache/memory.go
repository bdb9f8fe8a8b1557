package cache

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type entry struct {
	snapshot weather.WeatherSnapshot
	storedAt time.Time
}

// MemoryCache is a concurrency-safe in-memory snapshot cache.
type MemoryCache struct {
	mu sync.RWMutex

	// key: coordinates key
	data map[string]entry
	// insertion order, oldest first
	order []string

	// retention configuration
	maxEntries int           // max number of cached positions
	ttl        time.Duration // max age of a cached snapshot

	now func() time.Time
}

// NewMemoryCache creates a new MemoryCache.
// If maxEntries or ttl is <= 0, it is treated as unlimited.
func NewMemoryCache(maxEntries int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get returns the cached snapshot for key if present and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (weather.WeatherSnapshot, bool, error) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return weather.WeatherSnapshot{}, false, nil
	}
	if c.expired(e) {
		c.evictIfStale(key, e.storedAt)
		return weather.WeatherSnapshot{}, false, nil
	}
	return e.snapshot, true, nil
}

// evictIfStale deletes key unless a concurrent Set replaced the expired entry.
func (c *MemoryCache) evictIfStale(key string, storedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.data[key]; ok && cur.storedAt.Equal(storedAt) {
		delete(c.data, key)
		c.removeFromOrder(key)
	}
}

// Set stores snapshot under key and enforces retention.
func (c *MemoryCache) Set(_ context.Context, key string, snapshot weather.WeatherSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; ok {
		c.removeFromOrder(key)
	}
	c.data[key] = entry{snapshot: snapshot, storedAt: c.now()}
	c.order = append(c.order, key)

	// Enforce retention by age.
	if c.ttl > 0 {
		i := 0
		for ; i < len(c.order); i++ {
			if !c.expired(c.data[c.order[i]]) {
				break
			}
			delete(c.data, c.order[i])
		}
		c.order = c.order[i:]
	}

	// Enforce retention by count.
	if c.maxEntries > 0 && len(c.order) > c.maxEntries {
		over := len(c.order) - c.maxEntries
		for _, k := range c.order[:over] {
			delete(c.data, k)
		}
		c.order = c.order[over:]
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; ok {
		delete(c.data, key)
		c.removeFromOrder(key)
	}
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *MemoryCache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

func (c *MemoryCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
