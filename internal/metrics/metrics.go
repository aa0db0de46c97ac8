// Package metrics provides Prometheus metrics for imports and exports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Import metrics
	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgq_import_rows_total",
			Help: "Imported rows by terminal status",
		},
		[]string{"entity", "status"},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgq_import_batches_total",
			Help: "Import batches by result",
		},
		[]string{"entity", "result"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgq_import_batch_duration_seconds",
			Help:    "Time taken to process one import batch",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"entity"},
	)

	ImportsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sgq_imports_active",
			Help: "Imports currently holding a limiter slot",
		},
	)

	// Export metrics
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgq_exports_total",
			Help: "Workbook exports by entity",
		},
		[]string{"entity"},
	)
)

// RecordBatch records the outcome of one import batch.
func RecordBatch(entity, result string, imported, skipped, failed int, duration time.Duration) {
	BatchesTotal.WithLabelValues(entity, result).Inc()
	BatchDuration.WithLabelValues(entity).Observe(duration.Seconds())
	RowsTotal.WithLabelValues(entity, "imported").Add(float64(imported))
	RowsTotal.WithLabelValues(entity, "skipped").Add(float64(skipped))
	RowsTotal.WithLabelValues(entity, "failed").Add(float64(failed))
}
