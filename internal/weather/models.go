package weather

import (
	"fmt"
	"math"
	"time"
)

// City is a tracked city identified by its canonical name.
type City struct {
	Name string `json:"name" toml:"name"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat" toml:"lat"`
	Lon float64 `json:"lon" toml:"lon"`
}

// Key returns a stable key for indexing coordinates in caches.
// Positions closer than ~10m share a key.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f:%.4f", round4(c.Lat), round4(c.Lon))
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Place is the result of resolving a city name to a position.
type Place struct {
	City        City        `json:"city"`
	Coordinates Coordinates `json:"coordinates"`
}

// DailyForecast is a single day of the multi-day forecast.
type DailyForecast struct {
	Date        time.Time `json:"date"`
	WeatherCode int       `json:"weatherCode"`
	TempMaxC    float64   `json:"tempMaxC"`
	TempMinC    float64   `json:"tempMinC"`
	Sunrise     time.Time `json:"sunrise,omitempty"`
	Sunset      time.Time `json:"sunset,omitempty"`
}

// WeatherSnapshot is the current conditions plus daily forecast for a position
// at the time it was fetched. A new fetch produces a new snapshot.
type WeatherSnapshot struct {
	CurrentTemperatureC float64         `json:"currentTemperatureC"`
	CurrentWeatherCode  int             `json:"currentWeatherCode"`
	WindSpeedKmh        float64         `json:"windSpeedKmh"`
	ObservedAt          time.Time       `json:"observedAt"`
	Daily               []DailyForecast `json:"dailyForecast"`
	SourceCityName      *string         `json:"sourceCityName"`
	Coordinates         Coordinates     `json:"coordinates"`
	Timezone            string          `json:"timezone,omitempty"`
}

// CurrentTemperatureF returns the current temperature in Fahrenheit.
func (s WeatherSnapshot) CurrentTemperatureF() float64 {
	return CelsiusToFahrenheit(s.CurrentTemperatureC)
}

func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// WithCityName returns a copy of the snapshot attributed to name.
func (s WeatherSnapshot) WithCityName(name string) WeatherSnapshot {
	out := s
	out.SourceCityName = &name
	out.Daily = append([]DailyForecast(nil), s.Daily...)
	return out
}

// CityName returns the attributed city name or "" for coordinate fetches.
func (s WeatherSnapshot) CityName() string {
	if s.SourceCityName == nil {
		return ""
	}
	return *s.SourceCityName
}
