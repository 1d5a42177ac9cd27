// Package metrics exposes Prometheus instrumentation for the catalog import
// pipeline and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_runs_total",
		Help: "Total number of catalog import runs by status",
	}, []string{"status"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_import_duration_seconds",
		Help:    "Duration of catalog import runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	productsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_products_imported_total",
		Help: "Total number of products persisted by import runs",
	})

	categoriesImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_categories_imported_total",
		Help: "Total number of categories persisted by import runs",
	})

	offersMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_offers_matched_total",
		Help: "Total number of offer records joined onto products by kind",
	}, []string{"kind"})

	recordsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_records_skipped_total",
		Help: "Total number of feed records skipped by reason",
	}, []string{"reason"})

	foldersProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_folders_processed_total",
		Help: "Total number of feed folders processed by import runs",
	})
)

// RecordImportRun records a finished import run with its duration
func RecordImportRun(status string, duration time.Duration) {
	importRuns.WithLabelValues(status).Inc()
	importDuration.Observe(duration.Seconds())
}

// RecordImportTotals records the committed product and category counts
func RecordImportTotals(products, categories int64) {
	productsImported.Add(float64(products))
	categoriesImported.Add(float64(categories))
}

// RecordOffersMatched records offers joined onto products ("price" or "stock")
func RecordOffersMatched(kind string, count int) {
	offersMatched.WithLabelValues(kind).Add(float64(count))
}

// RecordSkipped records a feed record dropped before persistence
func RecordSkipped(reason string) {
	recordsSkipped.WithLabelValues(reason).Inc()
}

// RecordFolderProcessed records one fully processed feed folder
func RecordFolderProcessed() {
	foldersProcessed.Inc()
}
