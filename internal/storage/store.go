// Package storage provides abstractions for persisting ledger snapshots.
package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/gpbank/internal/models"
)

// ErrPersistence wraps every load or save failure reported by a Store.
var ErrPersistence = errors.New("persistence failure")

// Store defines the interface for snapshot storage.
// This abstraction allows swapping backends (JSON file, SQLite)
// without changing the service layer.
type Store interface {
	// Load reads the persisted snapshot. A store that has never been saved
	// returns an empty state and no error.
	Load(ctx context.Context) (*models.State, error)

	// Save overwrites the persisted snapshot with state.
	Save(ctx context.Context, state *models.State) error

	// Close releases any resources held by the store.
	Close() error
}

// LoadOrEmpty loads the snapshot from store, falling back to an empty state
// when it cannot be read or parsed. The returned state is always backfilled.
func LoadOrEmpty(ctx context.Context, store Store) *models.State {
	state, err := store.Load(ctx)
	if err != nil {
		slog.Warn("Failed to load snapshot, starting with empty state", "error", err)
		return models.NewState()
	}
	if state == nil {
		return models.NewState()
	}
	state.Backfill()
	return state
}
