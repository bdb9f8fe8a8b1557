package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// GeolocationTimeout bounds device location acquisition.
const GeolocationTimeout = 10 * time.Second

// LocateDevice asks the configured locator for the device position and makes
// it the active view.
func (c *Controller) LocateDevice(ctx context.Context) error {
	if c.opts.Locator == nil {
		return c.fail(fmt.Errorf("no device locator configured: %w", weather.ErrGeolocationDenied))
	}
	coords, err := c.locate(ctx, c.opts.Locator)
	if err != nil {
		return c.fail(err)
	}
	return c.UseCoordinates(ctx, coords)
}

// locate runs the locator under the geolocation deadline. A locator that
// ignores its context is abandoned when the deadline passes.
func (c *Controller) locate(ctx context.Context, l weather.Locator) (weather.Coordinates, error) {
	timeout := c.opts.GeolocationTimeout
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		coords weather.Coordinates
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		coords, err := l.Locate(lctx)
		ch <- result{coords, err}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.coords, nil
		}
		if errors.Is(lctx.Err(), context.DeadlineExceeded) || errors.Is(r.err, context.DeadlineExceeded) {
			return weather.Coordinates{}, fmt.Errorf("device location not available within %s: %w", timeout, weather.ErrGeolocationTimeout)
		}
		if errors.Is(r.err, weather.ErrGeolocationDenied) || errors.Is(r.err, weather.ErrGeolocationTimeout) {
			return weather.Coordinates{}, r.err
		}
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrGeolocationDenied, r.err)
	case <-lctx.Done():
		if errors.Is(lctx.Err(), context.DeadlineExceeded) {
			return weather.Coordinates{}, fmt.Errorf("device location not available within %s: %w", timeout, weather.ErrGeolocationTimeout)
		}
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrGeolocationDenied, lctx.Err())
	}
}

// UseCoordinates records coords as the device location, names it by reverse
// geocoding (falling back to "lat, lon") and selects the current location.
func (c *Controller) UseCoordinates(ctx context.Context, coords weather.Coordinates) error {
	if coords.Lat < -90 || coords.Lat > 90 || coords.Lon < -180 || coords.Lon > 180 {
		return c.fail(fmt.Errorf("coordinates %v out of range: %w", coords, weather.ErrInvalidInput))
	}

	name, err := c.resolver.ResolveByCoordinates(ctx, coords)
	if err != nil {
		log.Printf("WARN: reverse geocoding %s failed, using %q: %v", coords.Key(), name, err)
	}

	loc := Location{Coordinates: coords, Name: name}
	c.mu.Lock()
	c.location = &loc
	c.mu.Unlock()
	c.persistLocation(ctx, loc)
	log.Printf("INFO: device location set to %s (%s)", coords.Key(), name)

	return c.SelectCity(ctx, CurrentLocation)
}
