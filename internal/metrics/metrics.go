// Package metrics declares the Prometheus collectors exported by gpbank.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gpbank"

// Metrics groups the collectors shared by the gate and the service layer.
type Metrics struct {
	GateRejections *prometheus.CounterVec
	Mutations      *prometheus.CounterVec
	SaveFailures   prometheus.Counter
	SaveDuration   prometheus.Histogram
}

// New registers the collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GateRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_rejections_total",
			Help:      "Mutating operations rejected because another one held the gate.",
		}, []string{"op"}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutating operations executed under the gate, by outcome.",
		}, []string{"op", "result"}),
		SaveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_save_failures_total",
			Help:      "Snapshot writes that failed after a successful mutation.",
		}),
		SaveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Time spent writing the full snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
