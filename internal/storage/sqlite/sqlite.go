// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/gpbank/internal/models"
	"github.com/mmynk/gpbank/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite. The snapshot is stored as
// the same JSON document the file backend writes.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// OpenReadOnly opens an existing database without creating directories,
// files or tables. Save on the returned store fails.
func OpenReadOnly(dbPath string) (*SQLiteStore, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the snapshot row. An empty table is an empty ledger.
func (s *SQLiteStore) Load(ctx context.Context) (*models.State, error) {
	var document string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM snapshots WHERE id = 1").Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get snapshot: %v", storage.ErrPersistence, err)
	}
	return storage.Decode([]byte(document))
}

// Save replaces the snapshot row in a single statement.
func (s *SQLiteStore) Save(ctx context.Context, state *models.State) error {
	data, err := storage.Encode(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, document, saved_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET document = excluded.document, saved_at = excluded.saved_at`,
		string(data), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to save snapshot: %v", storage.ErrPersistence, err)
	}
	return nil
}

// SavedAt returns the Unix time of the last successful save, or 0 if the
// store has never been written.
func (s *SQLiteStore) SavedAt(ctx context.Context) (int64, error) {
	var savedAt int64
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshots WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot time: %w", err)
	}
	return savedAt, nil
}
