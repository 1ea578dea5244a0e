package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/gpbank/internal/models"
)

func TestSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "ledger.db")
	store, err := New(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	t.Run("Load on empty database returns empty state", func(t *testing.T) {
		state, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.Balances)
		assert.NotNil(t, state.Loans)

		savedAt, err := store.SavedAt(ctx)
		require.NoError(t, err)
		assert.Zero(t, savedAt)
	})

	t.Run("Save then Load returns equal state", func(t *testing.T) {
		state := models.NewState()
		state.Balances["Alice"] = 120
		state.Transactions["Alice"] = []models.Transaction{
			{Timestamp: 1, Type: models.TxDeposit, Amount: 120, ActorID: "u1"},
		}
		state.Profiles["42"] = json.RawMessage(`{"name":"Alice"}`)
		state.Loans["l1"] = &models.Loan{BorrowerName: "Bob", LenderName: "Alice", Balance: 40, Status: models.LoanOpen, Timestamp: 2}
		state.LoanTransactions["l1"] = []models.LoanTransaction{
			{Timestamp: 2, Type: models.LoanTxLoan, Amount: 40, ActorID: "u1"},
		}

		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Alice"}`, string(loaded.Profiles["42"]))
		loaded.Profiles = state.Profiles
		assert.Equal(t, state, loaded)

		savedAt, err := store.SavedAt(ctx)
		require.NoError(t, err)
		assert.NotZero(t, savedAt)
	})

	t.Run("Save overwrites the previous snapshot", func(t *testing.T) {
		state := models.NewState()
		state.Balances["Carl"] = 7
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int64{"Carl": 7}, loaded.Balances)
		assert.Empty(t, loaded.Loans)
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	first, err := New(dbPath)
	require.NoError(t, err)
	state := models.NewState()
	state.Balances["Alice"] = 3
	require.NoError(t, first.Save(ctx, state))
	require.NoError(t, first.Close())

	second, err := New(dbPath)
	require.NoError(t, err)
	defer second.Close()
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), loaded.Balances["Alice"])
}
