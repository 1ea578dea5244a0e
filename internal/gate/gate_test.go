package gate

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/gpbank/internal/metrics"
)

func TestDoRejectsWhileHeld(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	g := New(m)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- g.Do("deposit", func() error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	assert.True(t, g.Held())
	err := g.Do("withdraw", func() error {
		t.Error("second operation must not run")
		return nil
	})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, g.Held())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateRejections.WithLabelValues("withdraw")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues("deposit", "ok")))
}

func TestDoReleasesOnError(t *testing.T) {
	g := New(nil)
	boom := errors.New("boom")

	err := g.Do("withdraw", func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, g.Held())

	assert.NoError(t, g.Do("deposit", func() error { return nil }))
}

func TestDoReleasesOnPanic(t *testing.T) {
	g := New(nil)
	assert.Panics(t, func() {
		_ = g.Do("deposit", func() error { panic("bad") })
	})
	assert.False(t, g.Held())
}

func TestTryAcquire(t *testing.T) {
	g := New(nil)
	require.True(t, g.TryAcquire())
	assert.False(t, g.TryAcquire())
	g.Release()
	assert.True(t, g.TryAcquire())
}

// Under contention every operation either runs alone or is turned away.
func TestDoMutualExclusion(t *testing.T) {
	g := New(nil)
	var inside, maxInside, ran, busy atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do("op", func() error {
				n := inside.Add(1)
				for {
					m := maxInside.Load()
					if n <= m || maxInside.CompareAndSwap(m, n) {
						break
					}
				}
				ran.Add(1)
				inside.Add(-1)
				return nil
			})
			if errors.Is(err, ErrBusy) {
				busy.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, int32(64), ran.Load()+busy.Load())
	assert.GreaterOrEqual(t, ran.Load(), int32(1))
}
