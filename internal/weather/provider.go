package weather

import (
	"context"
)

// Provider abstracts a weather data source (e.g. Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords Coordinates) (WeatherSnapshot, error)
}

// GeoResult is a single geocoding match.
type GeoResult struct {
	Coordinates Coordinates
	DisplayName string
}

// Geocoder abstracts a forward/reverse geocoding service (e.g. Nominatim).
// Search returns an empty slice, not an error, when nothing matches.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string) ([]GeoResult, error)
	Reverse(ctx context.Context, coords Coordinates) (string, error)
}

// NameResolver turns a free-text city name into a Place.
type NameResolver interface {
	ResolveByName(ctx context.Context, query string) (Place, error)
}

// Cache is the contract snapshot caches (in-memory, Redis) must satisfy.
type Cache interface {
	Get(ctx context.Context, key string) (WeatherSnapshot, bool, error)
	Set(ctx context.Context, key string, snapshot WeatherSnapshot) error
	Delete(ctx context.Context, key string) error
}

// Locator is a single-shot device location source.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}
