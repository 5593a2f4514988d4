package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion and analytics service.
type Metrics struct {
	FilesLoaded prometheus.Counter
	FilesFailed prometheus.Counter

	RowsNormalized prometheus.Counter
	RowsDropped    prometheus.Counter

	NormalizeDuration prometheus.Histogram
	DatasetRecords    prometheus.Histogram

	SessionsActive prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleet_nox",
			Name:      "files_loaded_total",
			Help:      "Total CSV files normalized successfully.",
		}),
		FilesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleet_nox",
			Name:      "files_failed_total",
			Help:      "Total CSV files rejected with a schema or read error.",
		}),
		RowsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleet_nox",
			Name:      "rows_normalized_total",
			Help:      "Total rows that produced a canonical record.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fleet_nox",
			Name:      "rows_dropped_total",
			Help:      "Total rows dropped for missing timestamp or NOx after coercion.",
		}),
		NormalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fleet_nox",
			Name:      "normalize_duration_seconds",
			Help:      "Duration of normalizing a single CSV file.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		DatasetRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fleet_nox",
			Name:      "dataset_records",
			Help:      "Number of canonical records per loaded dataset.",
			Buckets:   []float64{10, 100, 1000, 10000, 100000, 1000000},
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleet_nox",
			Name:      "sessions_active",
			Help:      "Number of analysis sessions currently held in memory.",
		}),
	}

	prometheus.MustRegister(
		m.FilesLoaded,
		m.FilesFailed,
		m.RowsNormalized,
		m.RowsDropped,
		m.NormalizeDuration,
		m.DatasetRecords,
		m.SessionsActive,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesLoaded:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fleet_nox", Name: "files_loaded_total"}),
		FilesFailed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fleet_nox", Name: "files_failed_total"}),
		RowsNormalized:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fleet_nox", Name: "rows_normalized_total"}),
		RowsDropped:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "fleet_nox", Name: "rows_dropped_total"}),
		NormalizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fleet_nox", Name: "normalize_duration_seconds"}),
		DatasetRecords:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "fleet_nox", Name: "dataset_records"}),
		SessionsActive:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "fleet_nox", Name: "sessions_active"}),
	}
}
