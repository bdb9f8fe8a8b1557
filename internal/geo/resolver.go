package geo

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// FormatCoordinates renders coords as the "lat, lon" fallback display name.
func FormatCoordinates(c weather.Coordinates) string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

// Resolver turns city names into places and coordinates into display names.
// A city matching the catalog keeps its catalog spelling; any other city is
// named after the geocoder's display name.
type Resolver struct {
	catalog  *Catalog
	geocoder weather.Geocoder
	cache    Cache
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(catalog *Catalog, geocoder weather.Geocoder, cache Cache) *Resolver {
	if catalog == nil {
		catalog = NewCatalog(nil)
	}
	return &Resolver{catalog: catalog, geocoder: geocoder, cache: cache}
}

// Catalog returns the known-cities catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Match is a case-insensitive exact lookup in the catalog.
func (r *Resolver) Match(name string) (weather.City, bool) {
	return r.catalog.Match(name)
}

// Suggest returns autocomplete candidates from the catalog. It never fails.
func (r *Resolver) Suggest(prefix string) []string {
	return r.catalog.Suggest(prefix)
}

// ResolveByName geocodes query. Empty queries, empty geocoder results and
// geocoder failures are weather.ErrNotFound.
func (r *Resolver) ResolveByName(ctx context.Context, query string) (weather.Place, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return weather.Place{}, fmt.Errorf("empty city name: %w", weather.ErrNotFound)
	}
	key := common.Normalize(q)

	if r.cache != nil {
		place, ok, err := r.cache.GetPlace(ctx, key)
		if err != nil {
			log.Printf("WARN: geocode cache read failed query=%q: %v", key, err)
		} else if ok {
			return place, nil
		}
	}

	if r.geocoder == nil {
		return weather.Place{}, fmt.Errorf("city %q: no geocoder configured: %w", q, weather.ErrNotFound)
	}
	results, err := r.geocoder.Search(ctx, q)
	if err != nil {
		// A failed lookup is reported like an unknown city so it never reads
		// as a weather service outage.
		log.Printf("WARN: geocoder %s search failed query=%q: %v", r.geocoder.Name(), q, err)
		return weather.Place{}, fmt.Errorf("city %q: %w (geocoder %s: %v)", q, weather.ErrNotFound, r.geocoder.Name(), err)
	}
	if len(results) == 0 {
		return weather.Place{}, fmt.Errorf("city %q: %w", q, weather.ErrNotFound)
	}

	name := strings.TrimSpace(results[0].DisplayName)
	if city, ok := r.catalog.Match(q); ok {
		name = city.Name
	} else if name == "" {
		name = q
	}
	place := weather.Place{
		City:        weather.City{Name: name},
		Coordinates: results[0].Coordinates,
	}
	log.Printf("DEBUG: resolved %q to %q at %s", q, name, place.Coordinates.Key())

	if r.cache != nil {
		if err := r.cache.PutPlace(ctx, key, place); err != nil {
			log.Printf("WARN: geocode cache write failed query=%q: %v", key, err)
		}
	}
	return place, nil
}

// ResolveByCoordinates reverse-geocodes coords. On failure or an empty name it
// still returns the "lat, lon" fallback together with the error, so callers
// can carry on with a usable label.
func (r *Resolver) ResolveByCoordinates(ctx context.Context, coords weather.Coordinates) (string, error) {
	fallback := FormatCoordinates(coords)
	if r.geocoder == nil {
		return fallback, fmt.Errorf("reverse %s: no geocoder configured: %w", fallback, weather.ErrNotFound)
	}
	name, err := r.geocoder.Reverse(ctx, coords)
	if err != nil {
		return fallback, fmt.Errorf("reverse %s: %w (geocoder %s: %v)", fallback, weather.ErrNotFound, r.geocoder.Name(), err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback, fmt.Errorf("reverse %s: %w", fallback, weather.ErrNotFound)
	}
	return name, nil
}
