package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_records (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		updated_at TEXT NOT NULL
	)`,
}

// SQLStore keeps records as JSON documents in a SQL table. It also serves as
// the persistent geocode cache.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		path = "weather-dashboard.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; sqlite would otherwise report SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		log.Printf("WARN: could not set WAL mode: %v", err)
	}
	return newSQLStore(ctx, db, dialectSQLite)
}

// NewPostgres connects to databaseURL through the pgx stdlib driver.
func NewPostgres(ctx context.Context, databaseURL string) (*SQLStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	return newSQLStore(ctx, db, dialectPostgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Load(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM kv_records WHERE key = ?`), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load record %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode record %s: %w", key, err)
	}
	return true, nil
}

// Save upserts the record in one statement.
func (s *SQLStore) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO kv_records(key, value, updated_at) VALUES(?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}

// GetPlace implements geo.Cache.
func (s *SQLStore) GetPlace(ctx context.Context, query string) (weather.Place, bool, error) {
	var p weather.Place
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT name, lat, lon FROM geocode_cache WHERE query = ?`), query).
		Scan(&p.City.Name, &p.Coordinates.Lat, &p.Coordinates.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Place{}, false, nil
	}
	if err != nil {
		return weather.Place{}, false, fmt.Errorf("load geocode %q: %w", query, err)
	}
	return p, true, nil
}

// PutPlace implements geo.Cache.
func (s *SQLStore) PutPlace(ctx context.Context, query string, place weather.Place) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO geocode_cache(query, name, lat, lon, updated_at) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(query) DO UPDATE SET name = excluded.name, lat = excluded.lat, lon = excluded.lon, updated_at = excluded.updated_at`),
		query, place.City.Name, place.Coordinates.Lat, place.Coordinates.Lon, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save geocode %q: %w", query, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
