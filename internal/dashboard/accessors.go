package dashboard

import (
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func (c *Controller) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) Favorites() []weather.City {
	return c.favs.List()
}

// Snapshot returns the active snapshot, if any has been fetched.
func (c *Controller) Snapshot() (weather.WeatherSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return weather.WeatherSnapshot{}, false
	}
	return *c.snapshot, true
}

func (c *Controller) Theme() (theme.Theme, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.theme == nil {
		return theme.Theme{}, false
	}
	return *c.theme, true
}

// Dashboard returns the all-cities grid; it is empty in single mode.
func (c *Controller) Dashboard() []CityWeather {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CityWeather, len(c.dashboard))
	copy(out, c.dashboard)
	return out
}

func (c *Controller) Location() (Location, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.location == nil {
		return Location{}, false
	}
	return *c.location, true
}

// State returns a consistent copy of the whole session.
func (c *Controller) State() State {
	favs := c.favs.List()

	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		View:      c.view,
		Favorites: favs,
		Forecast:  []weather.DailyForecast{},
		Dashboard: make([]CityWeather, len(c.dashboard)),
	}
	copy(st.Dashboard, c.dashboard)
	if c.snapshot != nil {
		snap := *c.snapshot
		st.Snapshot = &snap
		st.Forecast = weather.ForecastWindow(snap.Daily)
	}
	if c.theme != nil {
		th := *c.theme
		st.Theme = &th
	}
	if c.location != nil {
		loc := *c.location
		st.Location = &loc
	}
	return st
}

// Suggest returns autocomplete candidates. It never fails.
func (c *Controller) Suggest(prefix string) []string {
	return c.resolver.Suggest(prefix)
}

// Notifications returns the most recent notifications, oldest first.
func (c *Controller) Notifications() []Notification {
	return c.notes.list()
}

// Subscribe delivers state-change and notification events until the returned
// cancel func is called.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	return c.notes.subscribe()
}
