package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	openMeteoMinuteLayout = "2006-01-02T15:04"
	openMeteoDateLayout   = "2006-01-02"
	openMeteoDailyFields  = "temperature_2m_max,temperature_2m_min,weathercode,sunrise,sunset"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider; baseURL defaults to the public API.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

// WithBackoff overrides the retry policy.
func (p *OpenMeteoProvider) WithBackoff(b BackoffConfig) *OpenMeteoProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	CurrentWeather   struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		Time        string  `json:"time"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weathercode"`
		TempMax     []float64 `json:"temperature_2m_max"`
		TempMin     []float64 `json:"temperature_2m_min"`
		Sunrise     []string  `json:"sunrise"`
		Sunset      []string  `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, coords weather.Coordinates) (weather.WeatherSnapshot, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
		values.Set("current_weather", "true")
		values.Set("daily", openMeteoDailyFields)
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.WeatherSnapshot{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.WeatherSnapshot{}, fmt.Errorf("%w: decode openmeteo response: %v", weather.ErrUpstreamUnavailable, err)
	}

	return payload.toSnapshot(coords), nil
}

func (p openMeteoPayload) toSnapshot(coords weather.Coordinates) weather.WeatherSnapshot {
	loc := time.UTC
	if p.Timezone != "" || p.UTCOffsetSeconds != 0 {
		loc = time.FixedZone(p.Timezone, p.UTCOffsetSeconds)
	}

	observed, err := time.ParseInLocation(openMeteoMinuteLayout, p.CurrentWeather.Time, loc)
	if err != nil {
		observed = time.Now().In(loc)
	}

	d := p.Daily
	n := minLen(len(d.Time), len(d.WeatherCode), len(d.TempMax), len(d.TempMin))
	daily := make([]weather.DailyForecast, 0, n)
	for i := 0; i < n; i++ {
		date, err := time.ParseInLocation(openMeteoDateLayout, d.Time[i], loc)
		if err != nil {
			continue
		}
		day := weather.DailyForecast{
			Date:        date,
			WeatherCode: d.WeatherCode[i],
			TempMaxC:    d.TempMax[i],
			TempMinC:    d.TempMin[i],
		}
		if i < len(d.Sunrise) {
			day.Sunrise, _ = time.ParseInLocation(openMeteoMinuteLayout, d.Sunrise[i], loc)
		}
		if i < len(d.Sunset) {
			day.Sunset, _ = time.ParseInLocation(openMeteoMinuteLayout, d.Sunset[i], loc)
		}
		daily = append(daily, day)
	}

	return weather.WeatherSnapshot{
		CurrentTemperatureC: p.CurrentWeather.Temperature,
		CurrentWeatherCode:  p.CurrentWeather.WeatherCode,
		WindSpeedKmh:        p.CurrentWeather.WindSpeed,
		ObservedAt:          observed,
		Daily:               daily,
		Coordinates:         coords,
		Timezone:            p.Timezone,
	}
}

func minLen(lens ...int) int {
	m := lens[0]
	for _, l := range lens[1:] {
		if l < m {
			m = l
		}
	}
	return m
}
