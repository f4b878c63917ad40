// Package store persists finished analysis payloads keyed by transcript
// fingerprint.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// currentSchemaVersion is the cache table layout version, independent of the
// payload schema version callers store alongside each entry.
const currentSchemaVersion = 1

// Store is a content-addressed cache of serialized analysis results. Get
// returns ok=false on a miss; entries carry the payload schema version they
// were written with so callers can reject stale layouts.
type Store interface {
	Get(ctx context.Context, fingerprint string) (payload []byte, schemaVersion int, ok bool, err error)
	Put(ctx context.Context, fingerprint string, schemaVersion int, payload []byte) error
}

// SQLite stores cache entries in a single-file database under a base
// directory.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the cache database at
// baseDir/cache.db and applies migrations.
func OpenSQLite(baseDir string) (*SQLite, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("OpenSQLite: create cache dir: %w", err)
	}

	dsn := filepath.Join(baseDir, "cache.db") +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenSQLite: open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQLite: %w", err)
	}
	return &SQLite{db: db}, nil
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("migrate: read user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if version < 1 {
		_, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS cache_entries (
				fingerprint    TEXT PRIMARY KEY,
				schema_version INTEGER NOT NULL,
				payload        BLOB NOT NULL,
				created_at     INTEGER NOT NULL
			)`)
		if err != nil {
			return fmt.Errorf("migrate: create cache_entries: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("migrate: set user_version: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLite) Get(ctx context.Context, fingerprint string) ([]byte, int, bool, error) {
	var (
		payload []byte
		version int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, schema_version FROM cache_entries WHERE fingerprint = ?",
		fingerprint).Scan(&payload, &version)
	if err == sql.ErrNoRows {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("Get: %w", err)
	}
	return payload, version, true, nil
}

// Put implements Store. An existing entry for the fingerprint is replaced.
func (s *SQLite) Put(ctx context.Context, fingerprint string, schemaVersion int, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (fingerprint, schema_version, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload        = excluded.payload,
			created_at     = excluded.created_at`,
		fingerprint, schemaVersion, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("Put: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type memoryEntry struct {
	version int
	payload []byte
}

// Memory is an in-process Store, used when caching is disabled and in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, fingerprint string) ([]byte, int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[fingerprint]
	if !ok {
		return nil, 0, false, nil
	}
	payload := make([]byte, len(e.payload))
	copy(payload, e.payload)
	return payload, e.version, true, nil
}

// Put implements Store.
func (m *Memory) Put(_ context.Context, fingerprint string, schemaVersion int, payload []byte) error {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	m.mu.Lock()
	m.entries[fingerprint] = memoryEntry{version: schemaVersion, payload: cp}
	m.mu.Unlock()
	return nil
}
