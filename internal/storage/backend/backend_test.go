package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/gpbank/internal/config"
	"github.com/mmynk/gpbank/internal/models"
	"github.com/mmynk/gpbank/internal/storage/jsonfile"
	"github.com/mmynk/gpbank/internal/storage/sqlite"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		check   func(t *testing.T, v any)
		wantErr bool
	}{
		{
			name: "json",
			cfg:  config.StorageConfig{Backend: config.BackendJSON, Path: filepath.Join(dir, "a.json")},
			check: func(t *testing.T, v any) {
				assert.IsType(t, &jsonfile.Store{}, v)
			},
		},
		{
			name: "sqlite",
			cfg:  config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "a.db")},
			check: func(t *testing.T, v any) {
				assert.IsType(t, &sqlite.SQLiteStore{}, v)
			},
		},
		{
			name:    "unknown",
			cfg:     config.StorageConfig{Backend: "redis", Path: "x"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			tt.check(t, store)

			state, err := store.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, models.NewState(), state)
		})
	}
}

func TestOpenReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, name := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(name, func(t *testing.T) {
			cfg := config.StorageConfig{Backend: name, Path: filepath.Join(dir, "ledger."+name)}

			state := models.NewState()
			state.Balances["Alice"] = 42
			writable, err := Open(cfg)
			require.NoError(t, err)
			require.NoError(t, writable.Save(ctx, state))
			require.NoError(t, writable.Close())

			store, err := OpenReadOnly(cfg)
			require.NoError(t, err)
			defer store.Close()

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(42), loaded.Balances["Alice"])
		})
	}
}

func TestOpenReadOnlyMissingSnapshot(t *testing.T) {
	for _, name := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "typo")
			path := filepath.Join(dir, "ledger."+name)

			_, err := OpenReadOnly(config.StorageConfig{Backend: name, Path: path})
			assert.Error(t, err)
			assert.NoFileExists(t, path)
			assert.NoDirExists(t, dir)
		})
	}
}

func TestReadOnlySQLiteRejectsSave(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(t.TempDir(), "ledger.db")}

	writable, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, writable.Close())

	store, err := OpenReadOnly(cfg)
	require.NoError(t, err)
	defer store.Close()
	assert.Error(t, store.Save(ctx, models.NewState()))
}
