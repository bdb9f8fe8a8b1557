package cache

import (
	"context"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

func TestMemoryCacheRetentionByCount(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)

	for i, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, weather.WeatherSnapshot{CurrentWeatherCode: i}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
	snap, ok, err := c.Get(ctx, "c")
	if err != nil || !ok {
		t.Fatalf("expected entry c, ok=%v err=%v", ok, err)
	}
	if snap.CurrentWeatherCode != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestMemoryCacheOverwriteRefreshesOrder(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)

	_ = c.Set(ctx, "a", weather.WeatherSnapshot{})
	_ = c.Set(ctx, "b", weather.WeatherSnapshot{})
	_ = c.Set(ctx, "a", weather.WeatherSnapshot{CurrentWeatherCode: 3})
	_ = c.Set(ctx, "c", weather.WeatherSnapshot{})

	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted after a was rewritten")
	}
	if snap, ok, _ := c.Get(ctx, "a"); !ok || snap.CurrentWeatherCode != 3 {
		t.Fatalf("expected rewritten a, got ok=%v %+v", ok, snap)
	}
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0, 10*time.Minute)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", weather.WeatherSnapshot{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(5 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(6 * time.Minute)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected expired entry to be dropped")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be removed, got %d entries", c.Len())
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0, 0)
	_ = c.Set(ctx, "k", weather.WeatherSnapshot{})

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected deleted entry to be gone")
	}
}

func TestMemoryCacheExpiryKeepsFreshReplacement(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(0, 10*time.Minute)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "a", weather.WeatherSnapshot{CurrentWeatherCode: 1})
	stale := c.data["a"]
	now = now.Add(11 * time.Minute)

	// A Set lands between the expired read and the eviction.
	_ = c.Set(ctx, "a", weather.WeatherSnapshot{CurrentWeatherCode: 2})
	c.evictIfStale("a", stale.storedAt)

	snap, ok, err := c.Get(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("expected fresh entry to survive, ok=%v err=%v", ok, err)
	}
	if snap.CurrentWeatherCode != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	now = now.Add(11 * time.Minute)
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected expired entry to be evicted")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
}
