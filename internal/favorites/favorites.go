package favorites

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// MaxFavorites bounds the list; adding beyond it evicts the oldest entry.
const MaxFavorites = 3

type record struct {
	Cities []weather.City `json:"cities" toml:"cities"`
}

// Store is the bounded, insertion-ordered favorites list. Every effective
// mutation writes the whole list as one record while holding the mutex.
// When a write fails the in-memory list keeps the change and the write is
// retried on the next mutation or Flush.
type Store struct {
	mu      sync.Mutex
	backend store.Store
	cities  []weather.City
	dirty   bool
}

// New creates an empty list persisted to backend. A nil backend keeps the
// list in memory only.
func New(backend store.Store) *Store {
	return &Store{backend: backend, cities: []weather.City{}}
}

// Load replaces the in-memory list with the persisted record. Records written
// by older versions are normalized: blank names and duplicates are dropped and
// only the newest MaxFavorites entries are kept.
func (s *Store) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	var rec record
	ok, err := s.backend.Load(ctx, store.KeyFavorites, &rec)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	if !ok {
		return nil
	}

	cities := make([]weather.City, 0, len(rec.Cities))
	for _, c := range rec.Cities {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || indexFold(cities, c.Name) >= 0 {
			continue
		}
		cities = append(cities, c)
	}
	if over := len(cities) - MaxFavorites; over > 0 {
		cities = cities[over:]
	}

	s.mu.Lock()
	s.cities = cities
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Add appends city unless a case-insensitive equal name is present, then
// evicts the oldest entries beyond MaxFavorites.
func (s *Store) Add(ctx context.Context, city weather.City) ([]weather.City, error) {
	city.Name = strings.TrimSpace(city.Name)
	if city.Name == "" {
		return s.List(), fmt.Errorf("favorite city name is empty: %w", weather.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexFold(s.cities, city.Name) >= 0 {
		return s.snapshotLocked(), s.retryLocked(ctx)
	}

	next := make([]weather.City, 0, len(s.cities)+1)
	next = append(next, s.cities...)
	next = append(next, city)
	for len(next) > MaxFavorites {
		log.Printf("INFO: favorites full, evicting %q", next[0].Name)
		next = next[1:]
	}
	s.cities = next

	return s.snapshotLocked(), s.persistLocked(ctx)
}

// Remove deletes the entry whose canonical name equals name exactly.
// Removing an absent name is a no-op.
func (s *Store) Remove(ctx context.Context, name string) ([]weather.City, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.cities {
		if c.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s.snapshotLocked(), s.retryLocked(ctx)
	}

	next := make([]weather.City, 0, len(s.cities)-1)
	next = append(next, s.cities[:idx]...)
	next = append(next, s.cities[idx+1:]...)
	s.cities = next

	return s.snapshotLocked(), s.persistLocked(ctx)
}

// List returns a copy of the favorites, oldest first.
func (s *Store) List() []weather.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Contains reports whether name is a favorite, ignoring case.
func (s *Store) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexFold(s.cities, name) >= 0
}

// Flush retries a failed write. It is a no-op when the record is up to date.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryLocked(ctx)
}

// Dirty reports whether the in-memory list has changes that failed to persist.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Store) retryLocked(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Save(ctx, store.KeyFavorites, record{Cities: s.snapshotLocked()}); err != nil {
		s.dirty = true
		log.Printf("ERROR: persist favorites: %v", err)
		return fmt.Errorf("%w: favorites: %v", weather.ErrPersistence, err)
	}
	s.dirty = false
	return nil
}

func (s *Store) snapshotLocked() []weather.City {
	out := make([]weather.City, len(s.cities))
	copy(out, s.cities)
	return out
}

func indexFold(cities []weather.City, name string) int {
	for i, c := range cities {
		if common.SameName(c.Name, name) {
			return i
		}
	}
	return -1
}
