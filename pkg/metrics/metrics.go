// Package metrics exposes prometheus collectors for workspace activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sqlite_api"

type Metrics struct {
	imports         *prometheus.CounterVec
	queries         *prometheus.CounterVec
	exports         *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	tables          prometheus.Gauge
}

// New registers the collectors with reg. A nil reg builds unregistered
// collectors, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		imports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Database imports by status.",
		}, []string{"status"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Submitted queries by outcome (result, refresh, error).",
		}, []string{"outcome"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and status.",
		}, []string{"format", "status"}),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Time spent rebuilding the table set.",
			Buckets:   prometheus.DefBuckets,
		}),
		tables: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tables",
			Help:      "Tables currently held in the workspace, synthetic ones included.",
		}),
	}
}

func (m *Metrics) Import(err error) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) Query(outcome string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Export(format string, err error) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format, status(err)).Inc()
}

func (m *Metrics) Refresh(d time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
}

func (m *Metrics) Tables(n int) {
	if m == nil {
		return
	}
	m.tables.Set(float64(n))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
