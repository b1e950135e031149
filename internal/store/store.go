// Package store persists the last-synced wire document per object, so
// a later diff can replay edits against the exact baseline the server
// acknowledged.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/google/uuid"

	"github.com/propwire/propwire/internal/log"
)

// ErrNotFound reports a missing baseline.
var ErrNotFound = errors.New("baseline not found")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS baselines (
	id TEXT PRIMARY KEY,
	object_type TEXT NOT NULL,
	change_key TEXT NOT NULL DEFAULT '',
	payload TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Baseline is one stored object snapshot.
type Baseline struct {
	ID         string
	ObjectType string
	ChangeKey  string
	Payload    string
	UpdatedAt  time.Time
}

// Store is a SQLite-backed baseline store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatStore, "Failed to open store", err, "path", path)
		return nil, err
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating store schema: %w", err)
	}
	log.Info(log.CatStore, "Opened baseline store", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a baseline. A blank ID gets a generated
// one; the stored ID is returned either way.
func (s *Store) Save(b Baseline) (string, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO baselines (id, object_type, change_key, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			object_type = excluded.object_type,
			change_key = excluded.change_key,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		b.ID, b.ObjectType, b.ChangeKey, b.Payload, b.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("saving baseline %s: %w", b.ID, err)
	}
	log.Debug(log.CatStore, "Saved baseline", "id", b.ID, "type", b.ObjectType)
	return b.ID, nil
}

// Get returns the baseline with the given ID.
func (s *Store) Get(id string) (*Baseline, error) {
	row := s.db.QueryRow(
		`SELECT id, object_type, change_key, payload, updated_at
		 FROM baselines WHERE id = ?`, id)
	var b Baseline
	err := row.Scan(&b.ID, &b.ObjectType, &b.ChangeKey, &b.Payload, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading baseline %s: %w", id, err)
	}
	return &b, nil
}

// List returns all baselines, most recently updated first.
func (s *Store) List() ([]Baseline, error) {
	rows, err := s.db.Query(
		`SELECT id, object_type, change_key, payload, updated_at
		 FROM baselines ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing baselines: %w", err)
	}
	defer rows.Close()

	var out []Baseline
	for rows.Next() {
		var b Baseline
		if err := rows.Scan(&b.ID, &b.ObjectType, &b.ChangeKey, &b.Payload, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning baseline: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a baseline. Deleting an absent ID returns ErrNotFound.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM baselines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting baseline %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	log.Debug(log.CatStore, "Deleted baseline", "id", id)
	return nil
}
