package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port        string        `validate:"required,numeric"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Record store for favorites, view and location.
	StoreDriver string `validate:"oneof=sqlite postgres toml memory"`
	StoreDSN    string `validate:"required_if=StoreDriver postgres"`

	// Snapshot cache.
	CacheDriver     string        `validate:"oneof=memory redis"`
	RedisAddr       string        `validate:"required_if=CacheDriver redis"`
	CacheTTL        time.Duration `validate:"gte=0"`
	CacheMaxEntries int           `validate:"gte=0"`

	Geocoder       string `validate:"oneof=nominatim google"`
	GeocoderAPIKey string `validate:"required_if=Geocoder google"`
	NominatimURL   string `validate:"omitempty,url"`
	OpenMeteoURL   string `validate:"omitempty,url"`
	UserAgent      string `validate:"required"`
	Language       string `validate:"required"`

	GeolocationTimeout time.Duration `validate:"gt=0"`
	GeolocationURL     string        `validate:"omitempty,url"`

	// RefreshInterval controls the auto refresh job (0 disables it).
	RefreshInterval time.Duration `validate:"gte=0"`

	// CatalogOnly restricts city entry to KnownCities; otherwise unknown
	// names are geocoded.
	CatalogOnly bool
	KnownCities []string
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "8080"),
		StoreDriver:     getenvDefault("STORE_DRIVER", "sqlite"),
		StoreDSN:        getenvDefault("STORE_DSN", "weather-dashboard.db"),
		CacheDriver:     getenvDefault("CACHE_DRIVER", "memory"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CacheMaxEntries: getenvInt("CACHE_MAX_ENTRIES", 256),
		Geocoder:        getenvDefault("GEOCODER", "nominatim"),
		GeocoderAPIKey:  os.Getenv("GEOCODER_API_KEY"),
		NominatimURL:    os.Getenv("NOMINATIM_URL"),
		OpenMeteoURL:    os.Getenv("OPENMETEO_URL"),
		UserAgent:       getenvDefault("USER_AGENT", "weather-dashboard/1.0"),
		Language:        getenvDefault("LANGUAGE", "ru"),
		GeolocationURL:  os.Getenv("GEOLOCATION_URL"),
		CatalogOnly:     getenvBool("CATALOG_ONLY", false),
		KnownCities:     splitList(os.Getenv("KNOWN_CITIES")),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.GeolocationTimeout, err = getenvDuration("GEOLOCATION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
