package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// NominatimGeocoder implements weather.Geocoder for OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	name     string
	baseURL  string
	language string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewNominatimGeocoder creates a geocoder. Nominatim's usage policy requires
// an identifying User-Agent, so userAgent should not be empty in production.
func NewNominatimGeocoder(client *http.Client, baseURL, language, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimGeocoder{
		name:     "nominatim",
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: language,
		httpCfg: HTTPClientConfig{
			Client:    client,
			Backoff:   DefaultBackoff,
			UserAgent: userAgent,
		},
		circuit: newCircuitBreaker("nominatim"),
	}
}

// WithBackoff overrides the retry policy.
func (g *NominatimGeocoder) WithBackoff(b BackoffConfig) *NominatimGeocoder {
	g.httpCfg.Backoff = b
	return g
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]weather.GeoResult, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", query)
		values.Set("format", "json")
		values.Set("addressdetails", "1")
		values.Set("limit", "1")
		if g.language != "" {
			values.Set("accept-language", g.language)
		}
		return http.NewRequest(http.MethodGet, g.baseURL+"/search?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Nominatim encodes coordinates as strings.
	var payload []struct {
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode nominatim search: %v", weather.ErrUpstreamUnavailable, err)
	}

	out := make([]weather.GeoResult, 0, len(payload))
	for _, item := range payload {
		lat, err := strconv.ParseFloat(item.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(item.Lon, 64)
		if err != nil {
			continue
		}
		out = append(out, weather.GeoResult{
			Coordinates: weather.Coordinates{Lat: lat, Lon: lon},
			DisplayName: item.DisplayName,
		})
	}
	return out, nil
}

func (g *NominatimGeocoder) Reverse(ctx context.Context, coords weather.Coordinates) (string, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
		values.Set("format", "json")
		if g.language != "" {
			values.Set("accept-language", g.language)
		}
		return http.NewRequest(http.MethodGet, g.baseURL+"/reverse?"+values.Encode(), nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		DisplayName string `json:"display_name"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode nominatim reverse: %v", weather.ErrUpstreamUnavailable, err)
	}
	// "Unable to geocode" comes back as 200 with an error field and no name.
	return strings.TrimSpace(payload.DisplayName), nil
}
