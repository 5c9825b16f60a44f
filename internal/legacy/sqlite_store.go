// This file implements the registry-equivalent legacy store on SQLite.
package legacy

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// DefaultSQLiteFileName is the legacy store file inside the data directory.
const DefaultSQLiteFileName = "legacy-registry.db"

const createRegistry = `CREATE TABLE IF NOT EXISTS registry (
    subkey TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (subkey, name)
);`

// SQLiteStore reads a registry-equivalent SQLite file. The file is opened
// read-only on first use; a missing file means the store does not exist.
type SQLiteStore struct {
	path string

	mu    sync.Mutex
	db    *sql.DB
	empty bool // file exists but has no registry table
}

var _ LegacyStoreReader = (*SQLiteStore)(nil)

// NewSQLiteStore returns a store for the file at path. Nothing is opened
// until the first read.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Exists implements LegacyStoreReader.
func (s *SQLiteStore) Exists() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// open returns the shared read-only handle, opening it on first call.
func (s *SQLiteStore) open() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	abs, err := filepath.Abs(s.path)
	if err != nil {
		return nil, err
	}
	uriPath := filepath.ToSlash(abs)
	if !strings.HasPrefix(uriPath, "/") {
		uriPath = "/" + uriPath
	}
	dsn := (&url.URL{Scheme: "file", Path: uriPath, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening legacy store %s: %w", s.path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening legacy store %s: %w", s.path, err)
	}
	var tables int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'registry'").Scan(&tables)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("inspecting legacy store %s: %w", s.path, err)
	}
	s.db = db
	s.empty = tables == 0
	return db, nil
}

func (s *SQLiteStore) isEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.empty
}

// Value implements LegacyStoreReader.
func (s *SQLiteStore) Value(subkey, name string) (string, bool, error) {
	db, err := s.open()
	if err != nil {
		return "", false, err
	}
	if s.isEmpty() {
		return "", false, nil
	}
	var value string
	err = db.QueryRow("SELECT value FROM registry WHERE subkey = ? AND name = ?", subkey, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s\\%s: %w", subkey, name, err)
	}
	return value, true, nil
}

// SubKeys implements LegacyStoreReader.
func (s *SQLiteStore) SubKeys(subkey string) ([]string, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	if s.isEmpty() {
		return nil, nil
	}
	rows, err := db.Query("SELECT DISTINCT subkey FROM registry")
	if err != nil {
		return nil, fmt.Errorf("listing subkeys of %q: %w", subkey, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning subkey: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing subkeys of %q: %w", subkey, err)
	}
	return childKeys(subkey, paths), nil
}

// Close implements LegacyStoreReader. Idempotent.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// WriteSQLiteStore creates or extends the store file at path with entries
// in a single transaction. Existing values with the same key are replaced.
func WriteSQLiteStore(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(createRegistry); err != nil {
		return fmt.Errorf("creating registry table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO registry (subkey, name, value) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.SubKey, e.Name, e.Value); err != nil {
			return fmt.Errorf("writing %s\\%s: %w", e.SubKey, e.Name, err)
		}
	}
	return tx.Commit()
}
