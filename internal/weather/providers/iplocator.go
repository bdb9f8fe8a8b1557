package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// IPLocator approximates the device location from the public IP (ip-api.com).
type IPLocator struct {
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewIPLocator(client *http.Client, url string) *IPLocator {
	if url == "" {
		url = "http://ip-api.com/json/?fields=status,message,lat,lon"
	}
	return &IPLocator{
		url: url,
		httpCfg: HTTPClientConfig{
			Client: client,
			// The caller enforces the geolocation deadline; a single retry keeps within it.
			Backoff: BackoffConfig{MaxRetries: 1, InitialInterval: 500 * time.Millisecond, MaxInterval: time.Second},
		},
		circuit: newCircuitBreaker("iplocator"),
	}
}

func (l *IPLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	resp, err := doRequestWithResilience(ctx, l.httpCfg, l.circuit, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, l.url, nil)
	})
	if err != nil {
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode ip location: %w", err)
	}
	if payload.Status != "success" {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrGeolocationDenied, payload.Message)
	}
	return weather.Coordinates{Lat: payload.Lat, Lon: payload.Lon}, nil
}

// StaticLocator returns coordinates reported by the client (e.g. browser geolocation).
type StaticLocator struct {
	Coordinates weather.Coordinates
}

func (l StaticLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}
	return l.Coordinates, nil
}
