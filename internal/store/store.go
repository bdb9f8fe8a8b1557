package store

import (
	"context"
	"errors"
	"fmt"
)

// Record keys.
const (
	KeyFavorites = "favorites"
	KeyView      = "view"
	KeyLocation  = "location"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// Store is a key/record store surviving process restarts. Each Save replaces
// the whole record in a single write.
type Store interface {
	// Load decodes the record stored under key into v. It reports false when
	// no record exists.
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
	Close() error
}

// Open returns the backend named by driver: memory, sqlite, postgres or toml.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "toml":
		s, err := NewTOMLStore(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
