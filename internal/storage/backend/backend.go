// Package backend opens the snapshot store selected by configuration.
package backend

import (
	"fmt"

	"github.com/mmynk/gpbank/internal/config"
	"github.com/mmynk/gpbank/internal/storage"
	"github.com/mmynk/gpbank/internal/storage/jsonfile"
	"github.com/mmynk/gpbank/internal/storage/sqlite"
)

// Open returns the store for cfg.Backend rooted at cfg.Path.
func Open(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return jsonfile.New(cfg.Path)
	case config.BackendSQLite:
		return sqlite.New(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// OpenReadOnly opens an existing snapshot for inspection. A missing snapshot
// is an error and nothing is created on disk.
func OpenReadOnly(cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		return jsonfile.Open(cfg.Path)
	case config.BackendSQLite:
		return sqlite.OpenReadOnly(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
