// Package snapstore owns the persistent schema and every read/write
// operation against it. All other packages go through its public API.
package snapstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rentfold/propsnap/schema"
	_ "modernc.org/sqlite" // SQLite driver
)

// Sentinel errors surfaced by store operations.
var (
	// ErrRecordNotFound indicates an enrich call against a missing id,
	// which is an integration error rather than a data condition.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownView indicates a query against a view the store does not define.
	ErrUnknownView = errors.New("unknown view")
)

// Store handles durable snapshot storage backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the SQLite database at path.
// Initialize must be called before the first read or write.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", path, err)
	}
	// Limit SQLite to a single open connection to avoid "database is locked" errors
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to SQLite database at %q: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Initialize applies the additive migration list and recreates the
// read-only views. It is safe to call on every process start: repeated
// calls produce no schema drift and no data loss.
func (s *Store) Initialize() error {
	if err := runMigrations(s.db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := recreateViews(s.db); err != nil {
		return fmt.Errorf("failed to recreate views: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Size returns the byte count of the backing database file.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat database file: %w", err)
	}
	return info.Size(), nil
}

// Status returns row counts and recency information for diagnostics.
func (s *Store) Status() (*schema.StoreStatus, error) {
	status := &schema.StoreStatus{
		Path:           s.path,
		RowsByEndpoint: make(map[schema.Endpoint]int64),
	}

	if size, err := s.Size(); err == nil {
		status.SizeBytes = size
	}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM api_responses", &status.ResponseRows},
		{"SELECT COUNT(*) FROM cohorts", &status.CohortRows},
		{"SELECT COUNT(*) FROM cohort_members", &status.MemberRows},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	rows, err := s.db.Query("SELECT endpoint_name, COUNT(*) FROM api_responses GROUP BY endpoint_name")
	if err != nil {
		return nil, fmt.Errorf("failed to count rows by endpoint: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		var n int64
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint count: %w", err)
		}
		status.RowsByEndpoint[schema.Endpoint(name)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating endpoint counts: %w", err)
	}

	var last sql.NullString
	if err := s.db.QueryRow("SELECT MAX(ts) FROM api_responses").Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to read last snapshot time: %w", err)
	}
	if last.Valid {
		t, err := time.Parse(time.RFC3339Nano, last.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last snapshot time: %w", err)
		}
		status.LastSnapshot = &t
	}

	return status, nil
}
