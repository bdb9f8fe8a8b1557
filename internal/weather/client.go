package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

const (
	// ForecastOffset is the index of the first daily entry shown: 0 includes today.
	ForecastOffset = 0
	// ForecastDays is the number of daily entries shown in the single-city view.
	ForecastDays = 6
)

// ForecastWindow returns the daily entries shown in the single-city view.
func ForecastWindow(daily []DailyForecast) []DailyForecast {
	if len(daily) <= ForecastOffset {
		return []DailyForecast{}
	}
	end := ForecastOffset + ForecastDays
	if end > len(daily) {
		end = len(daily)
	}
	out := make([]DailyForecast, end-ForecastOffset)
	copy(out, daily[ForecastOffset:end])
	return out
}

// Client fetches weather snapshots by coordinates or by city name.
type Client struct {
	provider Provider
	resolver NameResolver
	cache    Cache
}

// NewClient creates a new Client. cache may be nil.
func NewClient(provider Provider, resolver NameResolver, cache Cache) *Client {
	return &Client{
		provider: provider,
		resolver: resolver,
		cache:    cache,
	}
}

// FetchByCoordinates returns a snapshot for coords, served from cache when fresh.
func (c *Client) FetchByCoordinates(ctx context.Context, coords Coordinates) (WeatherSnapshot, error) {
	return c.fetch(ctx, coords, false)
}

// RefreshByCoordinates fetches a snapshot for coords, bypassing the cache.
func (c *Client) RefreshByCoordinates(ctx context.Context, coords Coordinates) (WeatherSnapshot, error) {
	return c.fetch(ctx, coords, true)
}

// FetchByCityName resolves name and fetches a snapshot attributed to the resolved city.
func (c *Client) FetchByCityName(ctx context.Context, name string) (WeatherSnapshot, error) {
	return c.fetchByName(ctx, name, false)
}

// RefreshByCityName is FetchByCityName bypassing the snapshot cache.
func (c *Client) RefreshByCityName(ctx context.Context, name string) (WeatherSnapshot, error) {
	return c.fetchByName(ctx, name, true)
}

func (c *Client) fetchByName(ctx context.Context, name string, fresh bool) (WeatherSnapshot, error) {
	if c.resolver == nil {
		return WeatherSnapshot{}, fmt.Errorf("resolve %q: no resolver configured: %w", name, ErrNotFound)
	}
	place, err := c.resolver.ResolveByName(ctx, name)
	if err != nil {
		if KindOf(err) != KindNotFound {
			// Geocoding failures must not read as a weather service outage.
			return WeatherSnapshot{}, fmt.Errorf("resolve %q: %w (%v)", name, ErrNotFound, err)
		}
		return WeatherSnapshot{}, fmt.Errorf("resolve %q: %w", name, err)
	}

	snap, err := c.fetch(ctx, place.Coordinates, fresh)
	if err != nil {
		return WeatherSnapshot{}, err
	}
	return snap.WithCityName(place.City.Name), nil
}

func (c *Client) fetch(ctx context.Context, coords Coordinates, fresh bool) (WeatherSnapshot, error) {
	if c.provider == nil {
		return WeatherSnapshot{}, fmt.Errorf("no weather provider configured: %w", ErrUpstreamUnavailable)
	}

	key := coords.Key()
	if c.cache != nil && !fresh {
		snap, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			log.Printf("WARN: snapshot cache read failed key=%s: %v", key, err)
		} else if ok {
			return snap, nil
		}
	}

	snap, err := c.provider.Fetch(ctx, coords)
	if err != nil {
		if !errors.Is(err, ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
		}
		return WeatherSnapshot{}, fmt.Errorf("provider %s fetch %s: %w", c.provider.Name(), key, err)
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now().UTC()
	}
	snap.Coordinates = coords

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, snap); err != nil {
			log.Printf("WARN: snapshot cache write failed key=%s: %v", key, err)
		}
	}
	return snap, nil
}
