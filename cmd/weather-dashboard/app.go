package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/i474232898/weather-dashboard/internal/cache"
	"github.com/i474232898/weather-dashboard/internal/config"
	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/favorites"
	"github.com/i474232898/weather-dashboard/internal/geo"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

// application holds the wired components of one dashboard session.
type application struct {
	cfg      *config.AppConfig
	store    store.Store
	cache    weather.Cache
	resolver *geo.Resolver
	ctrl     *dashboard.Controller
}

func newApplication(ctx context.Context, cfg *config.AppConfig) (*application, error) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	st, err := store.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	snapshots, err := newSnapshotCache(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	// SQL stores double as the geocode cache so lookups survive restarts.
	var places geo.Cache = geo.NewMemoryCache()
	if pc, ok := st.(geo.Cache); ok {
		places = pc
	}

	var geocoder weather.Geocoder
	switch cfg.Geocoder {
	case "google":
		geocoder = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	default:
		geocoder = providers.NewNominatimGeocoder(httpClient, cfg.NominatimURL, cfg.Language, cfg.UserAgent)
	}

	resolver := geo.NewResolver(geo.NewCatalog(cfg.KnownCities), geocoder, places)
	client := weather.NewClient(providers.NewOpenMeteoProvider(httpClient, cfg.OpenMeteoURL), resolver, snapshots)

	ctrl := dashboard.New(client, resolver, favorites.New(st), st, dashboard.Options{
		CatalogOnly:        cfg.CatalogOnly,
		Locator:            providers.NewIPLocator(httpClient, cfg.GeolocationURL),
		GeolocationTimeout: cfg.GeolocationTimeout,
	})

	log.Printf("INFO: session wired store=%s cache=%s geocoder=%s catalogOnly=%t",
		cfg.StoreDriver, cfg.CacheDriver, geocoder.Name(), cfg.CatalogOnly)

	return &application{
		cfg:      cfg,
		store:    st,
		cache:    snapshots,
		resolver: resolver,
		ctrl:     ctrl,
	}, nil
}

func newSnapshotCache(ctx context.Context, cfg *config.AppConfig) (weather.Cache, error) {
	if cfg.CacheDriver == "redis" {
		rc, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return rc, nil
	}
	return cache.NewMemoryCache(cfg.CacheMaxEntries, cfg.CacheTTL), nil
}

// restore loads the persisted session. Unreadable records are not fatal.
func (a *application) restore(ctx context.Context) {
	if err := a.ctrl.Restore(ctx); err != nil {
		log.Printf("WARN: restore session: %v", err)
	}
}

func (a *application) Close() {
	if err := a.ctrl.Flush(context.Background()); err != nil {
		log.Printf("WARN: flush on shutdown: %v", err)
	}
	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("WARN: close cache: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		log.Printf("WARN: close store: %v", err)
	}
}
