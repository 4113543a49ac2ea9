package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/kojo/kojo/internal/domain/records"
)

// SQLiteGateway keeps the aggregate in an embedded SQLite database, one
// JSON-encoded bucket per top-level field of the persisted shape —
// the same layout the browser-storage backend uses, one key per field.
type SQLiteGateway struct {
	db *sql.DB
}

const (
	bucketVersion         = "version"
	bucketMedical         = "medical"
	bucketFurusato        = "furusato"
	bucketDeleted         = "deleted"
	bucketDeletedFurusato = "deletedFurusato"
	bucketHistory         = "history"
)

// NewSQLiteGateway opens (or creates) the database at path.
func NewSQLiteGateway(path string) (*SQLiteGateway, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLiteGateway{db: db}, nil
}

// Close releases the underlying database handle.
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

// Load reassembles the aggregate from the stored buckets. An empty
// table returns (nil, nil).
func (g *SQLiteGateway) Load(ctx context.Context) (*records.AppData, error) {
	rows, err := g.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer rows.Close()

	buckets := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		buckets[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(buckets) == 0 {
		return nil, nil
	}

	// Reassemble the persisted shape and run it through the same
	// migration path as the file backend.
	doc := map[string]json.RawMessage{}
	for bucket, payload := range buckets {
		doc[bucket] = json.RawMessage(payload)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("assemble state: %w", err)
	}
	data, err := Migrate(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return data, nil
}

// Save snapshots every bucket in one transaction.
func (g *SQLiteGateway) Save(ctx context.Context, data *records.AppData) error {
	buckets := []struct {
		name  string
		value interface{}
	}{
		{bucketVersion, data.Version},
		{bucketMedical, data.Medical},
		{bucketFurusato, data.Furusato},
		{bucketDeleted, data.Deleted},
		{bucketDeletedFurusato, data.DeletedFurusato},
		{bucketHistory, data.History},
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	for _, b := range buckets {
		payload, err := json.Marshal(b.value)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode %s: %w", b.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO state (bucket, payload) VALUES (?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			b.name, payload); err != nil {
			tx.Rollback()
			return fmt.Errorf("write %s: %w", b.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
