package dashboard

import (
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// CurrentLocation is the selector of the device location view.
const CurrentLocation = "current-location"

// Mode is the dashboard layout.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeAll    Mode = "all"
)

// ViewState is what the user is looking at. It is persisted on every change.
type ViewState struct {
	ActiveSelector string `json:"activeSelector" toml:"activeSelector"`
	DashboardMode  Mode   `json:"dashboardMode" toml:"dashboardMode"`
}

// DefaultView is the state of a first session.
func DefaultView() ViewState {
	return ViewState{ActiveSelector: CurrentLocation, DashboardMode: ModeSingle}
}

// Location is the last successful device geolocation and its display name.
type Location struct {
	Coordinates weather.Coordinates `json:"coordinates" toml:"coordinates"`
	Name        string              `json:"name" toml:"name"`
}

// CityWeather is one tile of the all-cities dashboard.
type CityWeather struct {
	Selector string                  `json:"selector"`
	Name     string                  `json:"name"`
	Snapshot weather.WeatherSnapshot `json:"snapshot"`
	Theme    theme.Theme             `json:"theme"`
}

// State is a read-only copy of the session for the presentation layer.
type State struct {
	View      ViewState                `json:"view"`
	Favorites []weather.City           `json:"favorites"`
	Snapshot  *weather.WeatherSnapshot `json:"snapshot"`
	Forecast  []weather.DailyForecast  `json:"forecast"`
	Theme     *theme.Theme             `json:"theme"`
	Dashboard []CityWeather            `json:"dashboard"`
	Location  *Location                `json:"location"`
}

func themeFor(snap weather.WeatherSnapshot) theme.Theme {
	c := weather.Describe(snap.CurrentWeatherCode)
	return theme.Derive(c.BaseColor, c.Description)
}
