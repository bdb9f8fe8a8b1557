package geo

import (
	"context"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Cache remembers resolved places by normalized query.
type Cache interface {
	GetPlace(ctx context.Context, query string) (weather.Place, bool, error)
	PutPlace(ctx context.Context, query string, place weather.Place) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu     sync.RWMutex
	places map[string]weather.Place
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{places: make(map[string]weather.Place)}
}

func (c *MemoryCache) GetPlace(_ context.Context, query string) (weather.Place, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.places[query]
	return p, ok, nil
}

func (c *MemoryCache) PutPlace(_ context.Context, query string, place weather.Place) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places[query] = place
	return nil
}
