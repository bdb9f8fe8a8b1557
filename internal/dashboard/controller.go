package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/theme"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// WeatherClient fetches snapshots; *weather.Client implements it.
type WeatherClient interface {
	FetchByCoordinates(ctx context.Context, coords weather.Coordinates) (weather.WeatherSnapshot, error)
	RefreshByCoordinates(ctx context.Context, coords weather.Coordinates) (weather.WeatherSnapshot, error)
	FetchByCityName(ctx context.Context, name string) (weather.WeatherSnapshot, error)
	RefreshByCityName(ctx context.Context, name string) (weather.WeatherSnapshot, error)
}

// Resolver matches and geocodes city names; *geo.Resolver implements it.
type Resolver interface {
	Match(name string) (weather.City, bool)
	Suggest(prefix string) []string
	ResolveByName(ctx context.Context, query string) (weather.Place, error)
	ResolveByCoordinates(ctx context.Context, coords weather.Coordinates) (string, error)
}

// Options tunes controller behaviour.
type Options struct {
	// CatalogOnly rejects city names that are not in the known-cities catalog.
	CatalogOnly bool
	// Locator provides the device location for LocateDevice.
	Locator weather.Locator
	// GeolocationTimeout defaults to GeolocationTimeout.
	GeolocationTimeout time.Duration
}

// Controller owns one dashboard session. Actions run in the caller's
// goroutine; the mutex guards session state and is never held across
// network calls.
type Controller struct {
	client   WeatherClient
	resolver Resolver
	favs     *favorites.Store
	store    store.Store
	opts     Options
	notes    *notifier

	mu        sync.Mutex
	view      ViewState
	snapshot  *weather.WeatherSnapshot
	theme     *theme.Theme
	dashboard []CityWeather
	location  *Location
	places    map[string]weather.Place
	// seq increases with every selection; responses started under an older
	// seq are dropped.
	seq     uint64
	dashSeq uint64

	// persistMu serializes view and location writes.
	persistMu sync.Mutex
	viewDirty bool
}

// New creates a controller in the default view. Call Restore to load the
// persisted session. st may be nil for an in-memory session.
func New(client WeatherClient, resolver Resolver, favs *favorites.Store, st store.Store, opts Options) *Controller {
	if opts.GeolocationTimeout <= 0 {
		opts.GeolocationTimeout = GeolocationTimeout
	}
	if favs == nil {
		favs = favorites.New(st)
	}
	return &Controller{
		client:   client,
		resolver: resolver,
		favs:     favs,
		store:    st,
		opts:     opts,
		notes:    newNotifier(),
		view:     DefaultView(),
		places:   make(map[string]weather.Place),
	}
}

// SelectCity makes selector (a city name or CurrentLocation) the active view.
// On failure the displayed state is left untouched.
func (c *Controller) SelectCity(ctx context.Context, selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return c.fail(fmt.Errorf("empty city name: %w", weather.ErrInvalidInput))
	}
	if selector != CurrentLocation && c.opts.CatalogOnly && !c.known(selector) {
		return c.fail(fmt.Errorf("%q is not a known city: %w", selector, weather.ErrInvalidInput))
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	snap, canonical, err := c.fetchTarget(ctx, selector, false)
	if err != nil {
		return c.fail(fmt.Errorf("select %q: %w", selector, err))
	}
	c.apply(ctx, seq, "", canonical, snap)
	return nil
}

// AddFavorite records name as a favorite and selects it. Catalog names are
// used as-is; other names are rejected in catalog-only mode and geocoded
// otherwise.
func (c *Controller) AddFavorite(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.fail(fmt.Errorf("empty city name: %w", weather.ErrInvalidInput))
	}

	city, ok := c.resolver.Match(name)
	if !ok {
		if c.opts.CatalogOnly {
			return c.fail(fmt.Errorf("%q is not a known city: %w", name, weather.ErrInvalidInput))
		}
		place, err := c.resolver.ResolveByName(ctx, name)
		if err != nil {
			return c.fail(fmt.Errorf("add favorite %q: %w", name, err))
		}
		c.rememberPlace(place)
		city = place.City
	}

	if _, err := c.favs.Add(ctx, city); err != nil {
		if !errors.Is(err, weather.ErrPersistence) {
			return c.fail(err)
		}
		c.notes.report(err)
	}
	log.Printf("INFO: favorite added city=%q", city.Name)

	err := c.SelectCity(ctx, city.Name)
	if c.View().DashboardMode == ModeAll {
		c.loadDashboard(ctx, false)
	}
	return err
}

// RemoveFavorite drops name (exact match). When it was the active city the
// first remaining favorite, or the current location, becomes active.
func (c *Controller) RemoveFavorite(ctx context.Context, name string) error {
	before := len(c.favs.List())
	remaining, err := c.favs.Remove(ctx, name)
	if err != nil {
		if !errors.Is(err, weather.ErrPersistence) {
			return c.fail(err)
		}
		c.notes.report(err)
	}
	if len(remaining) == before {
		// Not a favorite; the active view stays as it is.
		return nil
	}

	c.mu.Lock()
	active := c.view.ActiveSelector == name
	tiles := make([]CityWeather, 0, len(c.dashboard))
	for _, t := range c.dashboard {
		if t.Selector != name {
			tiles = append(tiles, t)
		}
	}
	c.dashboard = tiles
	c.mu.Unlock()

	if !active {
		c.notes.publish(Event{Type: EventState})
		return nil
	}

	next := CurrentLocation
	if len(remaining) > 0 {
		next = remaining[0].Name
	}
	return c.fallbackTo(ctx, next)
}

// fallbackTo selects next. If that cannot be fetched the selector still moves
// so it never points at a removed favorite; the snapshot is cleared.
func (c *Controller) fallbackTo(ctx context.Context, next string) error {
	var err error
	if next != CurrentLocation || c.hasLocation() {
		if err = c.SelectCity(ctx, next); err == nil {
			return nil
		}
	}

	c.mu.Lock()
	c.seq++
	c.view.ActiveSelector = next
	c.snapshot = nil
	c.theme = nil
	c.mu.Unlock()

	c.persistView(ctx)
	c.notes.publish(Event{Type: EventState})
	return err
}

// ToggleDashboard flips between the single-city view and the all-cities grid
// and returns the new mode. Entering the grid fetches every tracked city;
// leaving it re-derives the theme of the active snapshot.
func (c *Controller) ToggleDashboard(ctx context.Context) Mode {
	c.mu.Lock()
	if c.view.DashboardMode == ModeAll {
		c.view.DashboardMode = ModeSingle
		c.dashboard = nil
		if c.snapshot != nil {
			th := themeFor(*c.snapshot)
			c.theme = &th
		}
	} else {
		c.view.DashboardMode = ModeAll
	}
	mode := c.view.DashboardMode
	c.mu.Unlock()

	c.persistView(ctx)
	if mode == ModeAll {
		c.loadDashboard(ctx, false)
	} else {
		c.notes.publish(Event{Type: EventState})
	}
	return mode
}

// Refresh refetches the active view bypassing caches. With no saved device
// location the current-location view has nothing to refresh.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	seq := c.seq
	view := c.view
	hasLocation := c.location != nil
	c.mu.Unlock()

	var err error
	if view.ActiveSelector != CurrentLocation || hasLocation {
		snap, canonical, ferr := c.fetchTarget(ctx, view.ActiveSelector, true)
		if ferr != nil {
			err = c.fail(fmt.Errorf("refresh %q: %w", view.ActiveSelector, ferr))
		} else {
			c.apply(ctx, seq, view.ActiveSelector, canonical, snap)
		}
	}
	if view.DashboardMode == ModeAll {
		c.loadDashboard(ctx, true)
	}
	return err
}

// Flush retries failed favorites and view writes.
func (c *Controller) Flush(ctx context.Context) error {
	c.persistMu.Lock()
	dirty := c.viewDirty
	c.persistMu.Unlock()
	if dirty {
		c.persistView(ctx)
	}
	return c.favs.Flush(ctx)
}

func (c *Controller) fetchTarget(ctx context.Context, selector string, fresh bool) (weather.WeatherSnapshot, string, error) {
	byCoords := c.client.FetchByCoordinates
	byName := c.client.FetchByCityName
	if fresh {
		byCoords = c.client.RefreshByCoordinates
		byName = c.client.RefreshByCityName
	}

	if selector == CurrentLocation {
		loc, ok := c.Location()
		if !ok {
			return weather.WeatherSnapshot{}, "", fmt.Errorf("current location is unknown: %w", weather.ErrNotFound)
		}
		snap, err := byCoords(ctx, loc.Coordinates)
		return snap, CurrentLocation, err
	}

	// Favorites and catalog cities keep their canonical spelling; anything
	// else is named by the geocoder.
	name, pinned := c.canonical(selector)

	c.mu.Lock()
	place, known := c.places[common.Normalize(name)]
	c.mu.Unlock()
	if known {
		snap, err := byCoords(ctx, place.Coordinates)
		if err != nil {
			return weather.WeatherSnapshot{}, "", err
		}
		return snap.WithCityName(place.City.Name), place.City.Name, nil
	}

	snap, err := byName(ctx, name)
	if err != nil {
		return weather.WeatherSnapshot{}, "", err
	}
	if pinned {
		return snap.WithCityName(name), name, nil
	}
	// Geocoder names are not in the catalog; keep their position so later
	// fetches skip geocoding the display name.
	resolved := snap.CityName()
	c.rememberPlace(weather.Place{City: weather.City{Name: resolved}, Coordinates: snap.Coordinates})
	return snap, resolved, nil
}

func (c *Controller) canonical(name string) (string, bool) {
	for _, f := range c.favs.List() {
		if common.SameName(f.Name, name) {
			return f.Name, true
		}
	}
	if city, ok := c.resolver.Match(name); ok {
		return city.Name, true
	}
	return name, false
}

func (c *Controller) known(name string) bool {
	_, pinned := c.canonical(name)
	return pinned
}

func (c *Controller) rememberPlace(p weather.Place) {
	if p.City.Name == "" {
		return
	}
	c.mu.Lock()
	c.places[common.Normalize(p.City.Name)] = p
	c.mu.Unlock()
}

// apply installs snap as the active snapshot unless a newer selection started
// after seq was taken. A non-empty from drops the result when the active
// selector is no longer the one the request refetched; a selection started
// before a refresh shares its seq but not its selector.
func (c *Controller) apply(ctx context.Context, seq uint64, from, selector string, snap weather.WeatherSnapshot) bool {
	c.mu.Lock()
	if c.seq != seq || (from != "" && c.view.ActiveSelector != from) {
		c.mu.Unlock()
		log.Printf("DEBUG: dropping stale snapshot selector=%q", selector)
		return false
	}
	c.view.ActiveSelector = selector
	c.snapshot = &snap
	th := themeFor(snap)
	c.theme = &th
	c.mu.Unlock()

	c.persistView(ctx)
	c.notes.publish(Event{Type: EventState})
	return true
}

// loadDashboard fetches the current location and every favorite
// concurrently. Failed cities are logged and left out of the grid.
func (c *Controller) loadDashboard(ctx context.Context, fresh bool) {
	c.mu.Lock()
	c.dashSeq++
	seq := c.dashSeq
	var locName string
	targets := make([]string, 0, favorites.MaxFavorites+1)
	if c.location != nil {
		locName = c.location.Name
		targets = append(targets, CurrentLocation)
	}
	c.mu.Unlock()
	for _, f := range c.favs.List() {
		targets = append(targets, f.Name)
	}

	results := make([]*CityWeather, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()

			snap, selector, err := c.fetchTarget(ctx, target, fresh)
			if err != nil {
				log.Printf("WARN: dashboard fetch failed city=%q: %v", target, err)
				return
			}
			name := snap.CityName()
			if selector == CurrentLocation {
				name = locName
			}
			results[i] = &CityWeather{Selector: selector, Name: name, Snapshot: snap, Theme: themeFor(snap)}
		}(i, target)
	}
	wg.Wait()

	tiles := make([]CityWeather, 0, len(results))
	for _, r := range results {
		if r != nil {
			tiles = append(tiles, *r)
		}
	}

	c.mu.Lock()
	applied := c.dashSeq == seq && c.view.DashboardMode == ModeAll
	if applied {
		c.dashboard = tiles
	}
	c.mu.Unlock()

	if applied {
		log.Printf("INFO: dashboard loaded cities=%d failed=%d", len(tiles), len(targets)-len(tiles))
		c.notes.publish(Event{Type: EventState})
	}
}

func (c *Controller) persistView(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	// Always write the latest view so writes are last-writer-wins.
	view := c.View()
	if err := c.store.Save(ctx, store.KeyView, view); err != nil {
		c.viewDirty = true
		log.Printf("ERROR: persist view: %v", err)
		c.notes.report(fmt.Errorf("%w: view: %v", weather.ErrPersistence, err))
		return
	}
	c.viewDirty = false
}

func (c *Controller) persistLocation(ctx context.Context, loc Location) {
	if c.store == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	if err := c.store.Save(ctx, store.KeyLocation, loc); err != nil {
		log.Printf("ERROR: persist location: %v", err)
		c.notes.report(fmt.Errorf("%w: location: %v", weather.ErrPersistence, err))
	}
}

// fail publishes err as a notification and returns it.
func (c *Controller) fail(err error) error {
	note := c.notes.report(err)
	log.Printf("WARN: action failed kind=%s: %v", note.Kind, err)
	return err
}

func (c *Controller) hasLocation() bool {
	_, ok := c.Location()
	return ok
}
