// Package gate provides the process-wide mutation gate.
//
// The gate admits at most one mutating operation at a time. A caller that
// finds it held is turned away with ErrBusy instead of waiting, so there is
// no queue and no fairness; callers retry on their own.
package gate

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/mmynk/gpbank/internal/metrics"
)

// ErrBusy is returned when another mutating operation holds the gate.
var ErrBusy = errors.New("another ledger operation is in progress, try again")

// Gate is a non-blocking single-holder lock.
type Gate struct {
	held    atomic.Bool
	metrics *metrics.Metrics
}

// New returns an open gate. m may be nil.
func New(m *metrics.Metrics) *Gate {
	return &Gate{metrics: m}
}

// TryAcquire takes the gate if it is free and reports whether it did.
func (g *Gate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the gate.
func (g *Gate) Release() {
	g.held.Store(false)
}

// Held reports whether an operation currently holds the gate.
func (g *Gate) Held() bool {
	return g.held.Load()
}

// Do runs fn while holding the gate. The gate is released on every exit
// path, panics included.
func (g *Gate) Do(op string, fn func() error) error {
	if !g.TryAcquire() {
		slog.Debug("Gate busy, rejecting operation", "op", op)
		if g.metrics != nil {
			g.metrics.GateRejections.WithLabelValues(op).Inc()
		}
		return ErrBusy
	}
	defer g.Release()

	err := fn()
	if g.metrics != nil {
		result := "ok"
		if err != nil {
			result = "rejected"
		}
		g.metrics.Mutations.WithLabelValues(op, result).Inc()
	}
	return err
}
