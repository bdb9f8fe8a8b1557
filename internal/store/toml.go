package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// TOMLStore keeps every record as a top-level table of one TOML file.
// Writes go to a temp file that is renamed over the original, so readers never
// see a partial document.
type TOMLStore struct {
	mu   sync.Mutex
	path string
}

func NewTOMLStore(path string) (*TOMLStore, error) {
	if path == "" {
		path = "weather-dashboard.toml"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &TOMLStore{path: path}, nil
}

func (s *TOMLStore) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *TOMLStore) Load(_ context.Context, key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return false, err
	}
	section, ok := doc[key]
	if !ok {
		return false, nil
	}
	// Round-trip the table through TOML to decode it into the caller's type.
	data, err := toml.Marshal(section)
	if err != nil {
		return false, fmt.Errorf("encode record %s: %w", key, err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode record %s: %w", key, err)
	}
	return true, nil
}

func (s *TOMLStore) Save(_ context.Context, key string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	section := map[string]any{}
	if err := toml.Unmarshal(data, &section); err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = section

	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.path, err)
	}
	return writeFileAtomic(s.path, out)
}

func (s *TOMLStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
