package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// geocoder keeps its API key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder on top of the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Name() string {
	return "google"
}

func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]weather.GeoResult, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: google geocoder api key is not configured", weather.ErrUpstreamUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	loc, err := geocoder.Geocoding(geocoder.Address{City: query})
	googleKeyMu.Unlock()
	if err != nil {
		if isZeroResults(err) {
			return []weather.GeoResult{}, nil
		}
		return nil, fmt.Errorf("%w: google geocoding: %v", weather.ErrUpstreamUnavailable, err)
	}

	return []weather.GeoResult{{
		Coordinates: weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude},
		DisplayName: query,
	}}, nil
}

func (g *GoogleGeocoder) Reverse(ctx context.Context, coords weather.Coordinates) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%w: google geocoder api key is not configured", weather.ErrUpstreamUnavailable)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	addrs, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: coords.Lat, Longitude: coords.Lon})
	googleKeyMu.Unlock()
	if err != nil {
		if isZeroResults(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: google reverse geocoding: %v", weather.ErrUpstreamUnavailable, err)
	}
	if len(addrs) == 0 {
		return "", nil
	}
	return strings.TrimSpace(addrs[0].FormattedAddress), nil
}

func isZeroResults(err error) bool {
	return common.HasAny(strings.ToUpper(err.Error()), "ZERO_RESULTS", "NO RESULTS")
}
