// Package ledger implements the account ledger and the loan engine.
//
// Engine owns the in-memory state. It is safe for concurrent use: a
// read-write mutex keeps memory access sound, while serialization of whole
// mutating operations is the job of the gate package in front of it.
package ledger

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/gpbank/internal/models"
)

// Engine holds the balances, loans and both transaction logs.
type Engine struct {
	mu    sync.RWMutex
	state *models.State

	now   func() time.Time
	newID func(time.Time) string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides the loan id generator.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine wraps state, which the engine owns from now on. A nil state starts
// an empty ledger.
func NewEngine(state *models.State, opts ...Option) *Engine {
	if state == nil {
		state = models.NewState()
	}
	state.Backfill()
	e := &Engine{
		state: state,
		now:   time.Now,
		newID: newLoanID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns a deep copy of the current state for persistence.
func (e *Engine) Snapshot() *models.State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

func (e *Engine) timestamp() int64 {
	return e.now().UnixMilli()
}

// window returns the last limit entries of log, oldest first. limit <= 0
// returns everything.
func window[T any](log []T, limit int) []T {
	start := 0
	if limit > 0 && limit < len(log) {
		start = len(log) - limit
	}
	out := make([]T, len(log)-start)
	copy(out, log[start:])
	return out
}

func addChecked(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// sameParty compares borrower and lender names the way loan matching does.
func sameParty(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
