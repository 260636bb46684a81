// Package metrics holds the prometheus collectors of the discovery pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Discovery tracks discovery runs. A nil *Discovery is valid and records nothing.
type Discovery struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	running  prometheus.Gauge
	rejected prometheus.Counter
}

// NewDiscovery creates the discovery collectors and registers them on reg.
func NewDiscovery(reg prometheus.Registerer) (*Discovery, error) {
	m := &Discovery{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motif_discoveries_total",
				Help: "Finished discovery runs by mode and outcome.",
			},
			[]string{"mode", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "motif_discovery_duration_seconds",
				Help:    "Wall time of discovery runs.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
			},
			[]string{"mode"},
		),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "motif_discoveries_running",
			Help: "Discovery runs currently executing.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "motif_discoveries_rejected_total",
			Help: "Discovery requests rejected because the worker queue was full.",
		}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.duration, m.running, m.rejected} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Started records a run picked up by a worker.
func (m *Discovery) Started() {
	if m == nil {
		return
	}
	m.running.Inc()
}

// Finished records the outcome of a run.
func (m *Discovery) Finished(mode, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.running.Dec()
	m.runs.WithLabelValues(mode, status).Inc()
	m.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// Rejected records a request turned away by a full queue.
func (m *Discovery) Rejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
