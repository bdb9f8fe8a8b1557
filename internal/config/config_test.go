package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.StoreDriver != "sqlite" || cfg.CacheDriver != "memory" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 10*time.Second || cfg.GeolocationTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts: %v %v", cfg.HTTPTimeout, cfg.GeolocationTimeout)
	}
	if cfg.RefreshInterval != 15*time.Minute || cfg.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected intervals: %v %v", cfg.RefreshInterval, cfg.CacheTTL)
	}
	if cfg.CatalogOnly || len(cfg.KnownCities) != 0 || cfg.Language != "ru" {
		t.Fatalf("unexpected city settings: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "toml")
	t.Setenv("STORE_DSN", "state/dashboard.toml")
	t.Setenv("REFRESH_INTERVAL", "0")
	t.Setenv("CATALOG_ONLY", "true")
	t.Setenv("KNOWN_CITIES", " Москва, ,Казань ")
	t.Setenv("CACHE_MAX_ENTRIES", "not-a-number")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != "toml" || cfg.StoreDSN != "state/dashboard.toml" {
		t.Fatalf("unexpected store: %s %s", cfg.StoreDriver, cfg.StoreDSN)
	}
	if cfg.RefreshInterval != 0 || !cfg.CatalogOnly {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if len(cfg.KnownCities) != 2 || cfg.KnownCities[0] != "Москва" || cfg.KnownCities[1] != "Казань" {
		t.Fatalf("unexpected cities: %v", cfg.KnownCities)
	}
	if cfg.CacheMaxEntries != 256 {
		t.Fatalf("expected fallback to default max entries, got %d", cfg.CacheMaxEntries)
	}
}

func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"STORE_DRIVER": "mongo"}, "StoreDriver"},
		{"redis without addr", map[string]string{"CACHE_DRIVER": "redis"}, "RedisAddr"},
		{"google without key", map[string]string{"GEOCODER": "google"}, "GeocoderAPIKey"},
		{"zero http timeout", map[string]string{"HTTP_TIMEOUT": "0s"}, "HTTPTimeout"},
		{"bad duration", map[string]string{"CACHE_TTL": "ten minutes"}, "CACHE_TTL"},
		{"bad url", map[string]string{"OPENMETEO_URL": "not a url"}, "OpenMeteoURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
