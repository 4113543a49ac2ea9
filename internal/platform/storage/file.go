// Package storage provides the persistence gateways the record store
// writes through: a single JSON file or an embedded SQLite database.
// Both persist the full aggregate on every save, last write wins.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kojo/kojo/internal/domain/records"
)

// FileGateway keeps the aggregate in one JSON document on disk. Writes
// go to a temp file in the same directory and are renamed over the
// target, so a crash mid-write leaves the previous snapshot intact.
type FileGateway struct {
	path string
}

// NewFileGateway creates a gateway for path, creating parent
// directories as needed.
func NewFileGateway(path string) (*FileGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &FileGateway{path: path}, nil
}

// Load reads and migrates the stored aggregate. A missing file returns
// (nil, nil).
func (g *FileGateway) Load(_ context.Context) (*records.AppData, error) {
	raw, err := os.ReadFile(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.path, err)
	}
	data, err := Migrate(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", g.path, err)
	}
	return data, nil
}

// Save writes the aggregate atomically.
func (g *FileGateway) Save(_ context.Context, data *records.AppData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(g.path), ".kojo-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", g.path, err)
	}
	return nil
}
