package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Restore loads the persisted favorites, view and device location. Unreadable
// records are reported and replaced by defaults. No weather is fetched; call
// Refresh afterwards.
func (c *Controller) Restore(ctx context.Context) error {
	var errs []error
	if err := c.favs.Load(ctx); err != nil {
		errs = append(errs, err)
	}

	view := DefaultView()
	var loc *Location
	if c.store != nil {
		var saved ViewState
		if ok, err := c.store.Load(ctx, store.KeyView, &saved); err != nil {
			errs = append(errs, err)
		} else if ok {
			view = saved
		}

		var savedLoc Location
		if ok, err := c.store.Load(ctx, store.KeyLocation, &savedLoc); err != nil {
			errs = append(errs, err)
		} else if ok {
			loc = &savedLoc
		}
	}
	view = normalizeView(view, c.favs.List())

	c.mu.Lock()
	c.seq++
	c.view = view
	c.location = loc
	c.snapshot = nil
	c.theme = nil
	c.dashboard = nil
	c.mu.Unlock()
	c.notes.publish(Event{Type: EventState})

	if len(errs) > 0 {
		return c.fail(fmt.Errorf("%w: restore: %v", weather.ErrPersistence, errors.Join(errs...)))
	}
	return nil
}

// normalizeView resets the selector to the current location unless it names
// a favorite, and the mode to single unless it is all.
func normalizeView(v ViewState, favs []weather.City) ViewState {
	if v.DashboardMode != ModeAll {
		v.DashboardMode = ModeSingle
	}
	selector := CurrentLocation
	for _, f := range favs {
		if common.SameName(f.Name, v.ActiveSelector) {
			selector = f.Name
			break
		}
	}
	v.ActiveSelector = selector
	return v
}
