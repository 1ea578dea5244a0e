package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/gpbank/internal/models"
)

var (
	maxBalance = decimal.NewFromInt(math.MaxInt64)
	minBalance = decimal.NewFromInt(math.MinInt64)
)

// document shadows the balances section so that one bad entry cannot fail
// the whole snapshot.
type document struct {
	*models.State
	Balances map[string]json.RawMessage `json:"balances"`
}

// Encode renders state as the indented JSON snapshot document shared by all
// backends.
func Encode(state *models.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode snapshot: %v", ErrPersistence, err)
	}
	return append(data, '\n'), nil
}

// Decode parses a snapshot document and backfills missing sections.
//
// Balances are read leniently: numbers are floored to whole GP and anything
// else is dropped with a warning. Null loan entries are dropped the same way.
func Decode(data []byte) (*models.State, error) {
	doc := document{State: &models.State{}}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode snapshot: %v", ErrPersistence, err)
	}

	state := doc.State
	if doc.Balances != nil {
		state.Balances = make(map[string]int64, len(doc.Balances))
		for _, name := range sortedKeys(doc.Balances) {
			balance, ok := parseBalance(doc.Balances[name])
			if !ok {
				slog.Warn("Dropping invalid balance from snapshot", "account", name, "value", string(doc.Balances[name]))
				continue
			}
			state.Balances[name] = balance
		}
	}
	for id, l := range state.Loans {
		if l == nil {
			slog.Warn("Dropping null loan from snapshot", "loan_id", id)
			delete(state.Loans, id)
		}
	}

	state.Backfill()
	return state, nil
}

// parseBalance accepts a JSON number that fits in an int64 after flooring.
func parseBalance(raw json.RawMessage) (int64, bool) {
	if len(raw) > 0 && raw[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || n == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return 0, false
	}
	d = d.Floor()
	if d.GreaterThan(maxBalance) || d.LessThan(minBalance) {
		return 0, false
	}
	return d.IntPart(), true
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
