package geo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type fakeGeocoder struct {
	results  []weather.GeoResult
	reverse  string
	err      error
	searches int
}

func (f *fakeGeocoder) Name() string { return "fake" }

func (f *fakeGeocoder) Search(_ context.Context, _ string) ([]weather.GeoResult, error) {
	f.searches++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeGeocoder) Reverse(_ context.Context, _ weather.Coordinates) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reverse, nil
}

func TestSuggest(t *testing.T) {
	c := NewCatalog(nil)

	got := c.Suggest("ка")
	want := []string{"Екатеринбург", "Казань"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = c.Suggest("СК")
	want = []string{"Москва", "Новосибирск", "Челябинск", "Омск", "Красноярск"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for _, prefix := range []string{"", "   ", "zzz"} {
		got := c.Suggest(prefix)
		if got == nil || len(got) != 0 {
			t.Fatalf("Suggest(%q): expected empty non-nil slice, got %#v", prefix, got)
		}
	}
}

func TestMatch(t *testing.T) {
	c := NewCatalog([]string{"Москва", "Казань", "Омск", "москва"})

	if names := c.Names(); len(names) != 3 {
		t.Fatalf("expected duplicates to collapse, got %v", names)
	}

	city, ok := c.Match("  казань ")
	if !ok || city.Name != "Казань" {
		t.Fatalf("expected canonical Казань, got %q ok=%v", city.Name, ok)
	}
	if _, ok := c.Match("Каз"); ok {
		t.Fatalf("partial names must not match")
	}
}

func TestResolveByNameUsesCatalogSpelling(t *testing.T) {
	g := &fakeGeocoder{results: []weather.GeoResult{{
		Coordinates: weather.Coordinates{Lat: 55.7963, Lon: 49.1088},
		DisplayName: "Казань, городской округ Казань, Татарстан, Россия",
	}}}
	r := NewResolver(NewCatalog(nil), g, NewMemoryCache())

	place, err := r.ResolveByName(context.Background(), "казань")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.City.Name != "Казань" {
		t.Fatalf("expected catalog spelling, got %q", place.City.Name)
	}
	if place.Coordinates.Lat != 55.7963 {
		t.Fatalf("unexpected coordinates %+v", place.Coordinates)
	}

	if _, err := r.ResolveByName(context.Background(), " КАЗАНЬ "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.searches != 1 {
		t.Fatalf("expected the second lookup to hit the cache, got %d searches", g.searches)
	}
}

func TestResolveByNameUsesGeocoderName(t *testing.T) {
	g := &fakeGeocoder{results: []weather.GeoResult{{
		Coordinates: weather.Coordinates{Lat: 56.4977, Lon: 84.9744},
		DisplayName: "Томск, Томская область, Россия",
	}}}
	r := NewResolver(NewCatalog(nil), g, nil)

	place, err := r.ResolveByName(context.Background(), "томск")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place.City.Name != "Томск, Томская область, Россия" {
		t.Fatalf("expected geocoder display name, got %q", place.City.Name)
	}
}

func TestResolveByNameErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		geo   *fakeGeocoder
		want  error
	}{
		{"empty", "", &fakeGeocoder{}, weather.ErrNotFound},
		{"whitespace", "   ", &fakeGeocoder{}, weather.ErrNotFound},
		{"no results", "Атлантида", &fakeGeocoder{results: []weather.GeoResult{}}, weather.ErrNotFound},
		{"geocoder outage", "Томск", &fakeGeocoder{err: fmt.Errorf("%w: status 503", weather.ErrUpstreamUnavailable)}, weather.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(nil, tt.geo, nil)
			_, err := r.ResolveByName(context.Background(), tt.query)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if weather.KindOf(err) != weather.KindNotFound {
				t.Fatalf("expected NotFound kind, got %s (%v)", weather.KindOf(err), err)
			}
		})
	}

	_, err := NewResolver(nil, nil, nil).ResolveByName(context.Background(), "Томск")
	if weather.KindOf(err) != weather.KindNotFound {
		t.Fatalf("expected NotFound without a geocoder, got %v", err)
	}
}

func TestResolveByCoordinates(t *testing.T) {
	coords := weather.Coordinates{Lat: 55.75583, Lon: 37.61729}

	r := NewResolver(nil, &fakeGeocoder{reverse: " Москва, Россия "}, nil)
	name, err := r.ResolveByCoordinates(context.Background(), coords)
	if err != nil || name != "Москва, Россия" {
		t.Fatalf("expected trimmed display name, got %q err=%v", name, err)
	}

	r = NewResolver(nil, &fakeGeocoder{}, nil)
	name, err = r.ResolveByCoordinates(context.Background(), coords)
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if name != "55.7558, 37.6173" {
		t.Fatalf("expected coordinate fallback, got %q", name)
	}

	r = NewResolver(nil, &fakeGeocoder{err: weather.ErrUpstreamUnavailable}, nil)
	name, err = r.ResolveByCoordinates(context.Background(), coords)
	if weather.KindOf(err) != weather.KindNotFound || name != "55.7558, 37.6173" {
		t.Fatalf("expected fallback with NotFound error, got %q err=%v", name, err)
	}
}
