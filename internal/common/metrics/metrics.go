package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	CriteriaBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "criteria_built_total",
			Help: "Questionnaires turned into filter criteria",
		},
		[]string{"experience", "region"},
	)

	CatalogRecordsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_records_scanned_total",
			Help: "Catalog records evaluated by the filter",
		},
		[]string{"source"},
	)

	CatalogMatches = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_matches",
			Help:    "Number of records matching one questionnaire",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"source"},
	)

	CatalogEmptyResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_empty_results_total",
			Help: "Filter runs that matched nothing",
		},
		[]string{"source"},
	)

	CatalogLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "catalog_load_duration_seconds",
			Help: "Time taken to load a catalog snapshot",
		},
		[]string{"source", "cache"},
	)
)

// ObserveFilterRun records one filter pass over a catalog snapshot.
func ObserveFilterRun(source string, scanned, matched int) {
	CatalogRecordsScanned.WithLabelValues(source).Add(float64(scanned))
	CatalogMatches.WithLabelValues(source).Observe(float64(matched))
	if matched == 0 {
		CatalogEmptyResults.WithLabelValues(source).Inc()
	}
}

// ObserveCatalogLoad records how long a load took; cache is "hit", "miss"
// or "none".
func ObserveCatalogLoad(source, cache string, started time.Time) {
	CatalogLoadDuration.WithLabelValues(source, cache).Observe(time.Since(started).Seconds())
}
