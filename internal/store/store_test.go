package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type favoritesRecord struct {
	Cities []weather.City `json:"cities" toml:"cities"`
}

type locationRecord struct {
	Coordinates weather.Coordinates `json:"coordinates" toml:"coordinates"`
	Name        string              `json:"name" toml:"name"`
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	sqlite, err := NewSQLite(ctx, filepath.Join(dir, "dash.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	file, err := NewTOMLStore(filepath.Join(dir, "state", "dash.toml"))
	if err != nil {
		t.Fatalf("open toml: %v", err)
	}

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
		"toml":   file,
	}
}

func TestStoreRecords(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var fav favoritesRecord
			ok, err := s.Load(ctx, KeyFavorites, &fav)
			if err != nil || ok {
				t.Fatalf("expected no record, ok=%v err=%v", ok, err)
			}

			want := favoritesRecord{Cities: []weather.City{{Name: "Казань"}, {Name: "Омск"}}}
			if err := s.Save(ctx, KeyFavorites, want); err != nil {
				t.Fatalf("save: %v", err)
			}
			loc := locationRecord{Coordinates: weather.Coordinates{Lat: 55.7558, Lon: 37.6173}, Name: "Москва"}
			if err := s.Save(ctx, KeyLocation, loc); err != nil {
				t.Fatalf("save: %v", err)
			}

			// overwrite replaces the whole record
			want.Cities = want.Cities[1:]
			if err := s.Save(ctx, KeyFavorites, want); err != nil {
				t.Fatalf("save: %v", err)
			}

			ok, err = s.Load(ctx, KeyFavorites, &fav)
			if err != nil || !ok {
				t.Fatalf("expected record, ok=%v err=%v", ok, err)
			}
			if len(fav.Cities) != 1 || fav.Cities[0].Name != "Омск" {
				t.Fatalf("unexpected favorites %+v", fav)
			}

			var gotLoc locationRecord
			if ok, err := s.Load(ctx, KeyLocation, &gotLoc); err != nil || !ok {
				t.Fatalf("expected location, ok=%v err=%v", ok, err)
			}
			if gotLoc != loc {
				t.Fatalf("expected %+v, got %+v", loc, gotLoc)
			}
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dash.db")

	s, err := NewSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, KeyFavorites, favoritesRecord{Cities: []weather.City{{Name: "Уфа"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = NewSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	var fav favoritesRecord
	if ok, err := s.Load(ctx, KeyFavorites, &fav); err != nil || !ok || fav.Cities[0].Name != "Уфа" {
		t.Fatalf("unexpected record %+v ok=%v err=%v", fav, ok, err)
	}
}

func TestSQLiteGeocodeCache(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, filepath.Join(t.TempDir(), "dash.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.GetPlace(ctx, "казань"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	place := weather.Place{City: weather.City{Name: "Казань"}, Coordinates: weather.Coordinates{Lat: 55.7963, Lon: 49.1088}}
	if err := s.PutPlace(ctx, "казань", place); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := s.GetPlace(ctx, "казань")
	if err != nil || !ok || got != place {
		t.Fatalf("expected %+v, got %+v ok=%v err=%v", place, got, ok, err)
	}
}

func TestTOMLStoreIsHumanReadable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dash.toml")
	s, err := NewTOMLStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Save(ctx, KeyFavorites, favoritesRecord{Cities: []weather.City{{Name: "Пермь"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "Пермь") || !strings.Contains(string(data), "favorites") {
		t.Fatalf("unexpected file content:\n%s", data)
	}

	matches, _ := filepath.Glob(path + ".*.tmp")
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestTOMLStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dash.toml")
	if err := os.WriteFile(path, []byte("this is = = not toml"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewTOMLStore(path)
	var fav favoritesRecord
	if _, err := s.Load(context.Background(), KeyFavorites, &fav); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "memory", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()
	if err := s.Save(ctx, KeyView, struct{}{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	if _, err := Open(ctx, "cassandra", ""); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
