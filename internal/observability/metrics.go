// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Valuation metrics
	ValuationsComputed prometheus.Counter
	ValuationDuration  prometheus.Histogram
	VerdictsIssued     *prometheus.CounterVec
	AnalogsUsed        prometheus.Histogram

	// Cache metrics
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CacheExpiredOnRead  prometheus.Counter
	CacheEntriesSwept   prometheus.Counter

	// Matching metrics
	StreetMatches  *prometheus.CounterVec
	ComplexMatches *prometheus.CounterVec

	// Batch metrics
	BatchPagesProcessed   prometheus.Counter
	BatchListingsMatched  prometheus.Counter
	BatchListingsScanned  prometheus.Counter
	BatchRunsTotal        *prometheus.CounterVec
	BatchDuration         prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
	DBConnections   *prometheus.GaugeVec

	// Health metrics
	LastSuccessfulSweep prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "estate_valuation"
	}

	return &Metrics{
		// Valuation metrics
		ValuationsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "computed_total",
			Help:      "Total number of valuation reports computed",
		}),
		ValuationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "duration_seconds",
			Help:      "Valuation computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		VerdictsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "verdicts_total",
			Help:      "Total number of verdicts issued by category",
		}, []string{"verdict"}),
		AnalogsUsed: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "analogs_used",
			Help:      "Number of analog prices used per valuation",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50, 100},
		}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of valuation cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of valuation cache misses",
		}),
		CacheExpiredOnRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "expired_on_read_total",
			Help:      "Total number of cache entries found expired on read",
		}),
		CacheEntriesSwept: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries_swept_total",
			Help:      "Total number of expired cache entries removed by sweeps",
		}),

		// Matching metrics
		StreetMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "street_matches_total",
			Help:      "Total number of street matches by stage",
		}, []string{"stage"}),
		ComplexMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "complex_matches_total",
			Help:      "Total number of complex matches by stage",
		}, []string{"stage"}),

		// Batch metrics
		BatchPagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "pages_processed_total",
			Help:      "Total number of listing pages processed by batch matching",
		}),
		BatchListingsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "listings_matched_total",
			Help:      "Total number of listings assigned a complex",
		}),
		BatchListingsScanned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "listings_scanned_total",
			Help:      "Total number of listings scanned by batch matching",
		}),
		BatchRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Total number of batch runs by status",
		}, []string{"status"}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Batch run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		DBConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "connections",
			Help:      "Number of database connections by state",
		}, []string{"database", "state"}),

		// Health metrics
		LastSuccessfulSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of last successful cache sweep",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCacheHit increments the cache hits counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache misses counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordCacheExpired increments the expired-on-read counter.
func RecordCacheExpired() {
	DefaultMetrics.CacheExpiredOnRead.Inc()
}

// RecordCacheSweep records entries removed by a cleanup sweep.
func RecordCacheSweep(removed int) {
	DefaultMetrics.CacheEntriesSwept.Add(float64(removed))
	DefaultMetrics.LastSuccessfulSweep.SetToCurrentTime()
}

// RecordVerdict records a computed valuation and its verdict.
func RecordVerdict(verdict string, analogsUsed int) {
	DefaultMetrics.ValuationsComputed.Inc()
	DefaultMetrics.VerdictsIssued.WithLabelValues(verdict).Inc()
	DefaultMetrics.AnalogsUsed.Observe(float64(analogsUsed))
}

// ObserveValuationDuration records how long a valuation took.
func ObserveValuationDuration(d time.Duration) {
	DefaultMetrics.ValuationDuration.Observe(d.Seconds())
}

// RecordStreetMatch records a street match by stage.
func RecordStreetMatch(stage string) {
	DefaultMetrics.StreetMatches.WithLabelValues(stage).Inc()
}

// RecordComplexMatch records a complex match by stage.
func RecordComplexMatch(stage string) {
	DefaultMetrics.ComplexMatches.WithLabelValues(stage).Inc()
}

// RecordBatchPage records one processed page of the batch matcher.
func RecordBatchPage(scanned, matched int) {
	DefaultMetrics.BatchPagesProcessed.Inc()
	DefaultMetrics.BatchListingsScanned.Add(float64(scanned))
	DefaultMetrics.BatchListingsMatched.Add(float64(matched))
}

// RecordBatchRun records a completed batch run.
func RecordBatchRun(status string, durationSeconds float64) {
	DefaultMetrics.BatchRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.BatchDuration.Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
