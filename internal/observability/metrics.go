// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Solve metrics
	SolveRunsTotal     *prometheus.CounterVec
	SolveDuration      *prometheus.HistogramVec
	SolveIterations    prometheus.Histogram
	IterationsTotal    prometheus.Counter
	ObjectiveValue     *prometheus.GaugeVec
	UnservedTimepoints prometheus.Counter

	// Ingest metrics
	RecordsIngested *prometheus.CounterVec
	IngestErrors    *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Progress metrics
	ProgressSubscribers prometheus.Gauge
	ProgressEventsSent  prometheus.Counter

	// Health metrics
	LastSuccessfulSolve prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "grid_expansion_lab"
	}

	return &Metrics{
		// Solve metrics
		SolveRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "runs_total",
			Help:      "Total number of solve runs by outcome",
		}, []string{"scenario", "outcome"}),
		SolveDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "duration_seconds",
			Help:      "Solve run duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"scenario"}),
		SolveIterations: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "iterations_per_run",
			Help:      "Convergence-loop iterations per solve run",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),
		IterationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "iterations_total",
			Help:      "Total number of solver iterations executed",
		}),
		ObjectiveValue: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "objective_npv_dollars",
			Help:      "Latest total NPV system cost per scenario",
		}, []string{"scenario"}),
		UnservedTimepoints: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solve",
			Name:      "unserved_timepoints_total",
			Help:      "Total number of timepoints left with unserved demand",
		}),

		// Ingest metrics
		RecordsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Total number of input records ingested by table",
		}, []string{"table"}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "errors_total",
			Help:      "Total number of ingest errors by table",
		}, []string{"table"}),

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

		// Progress metrics
		ProgressSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "subscribers",
			Help:      "Current number of WebSocket progress subscribers",
		}),
		ProgressEventsSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "events_sent_total",
			Help:      "Total number of progress events broadcast",
		}),

		// Health metrics
		LastSuccessfulSolve: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_solve_timestamp",
			Help:      "Unix timestamp of last successful solve run",
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

// RecordSolveRun records a finished solve run.
func RecordSolveRun(scenario, outcome string, durationSeconds float64, iterations int) {
	DefaultMetrics.SolveRunsTotal.WithLabelValues(scenario, outcome).Inc()
	DefaultMetrics.SolveDuration.WithLabelValues(scenario).Observe(durationSeconds)
	DefaultMetrics.SolveIterations.Observe(float64(iterations))
}

// RecordIteration increments the iteration counter and updates the latest
// objective for a scenario.
func RecordIteration(scenario string, objective float64) {
	DefaultMetrics.IterationsTotal.Inc()
	DefaultMetrics.ObjectiveValue.WithLabelValues(scenario).Set(objective)
}

// RecordUnservedTimepoint increments the unserved demand counter.
func RecordUnservedTimepoint() {
	DefaultMetrics.UnservedTimepoints.Inc()
}

// RecordIngest records ingested rows for a table.
func RecordIngest(table string, rows int, err error) {
	if err != nil {
		DefaultMetrics.IngestErrors.WithLabelValues(table).Inc()
		return
	}
	DefaultMetrics.RecordsIngested.WithLabelValues(table).Add(float64(rows))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordProgressEvent increments the broadcast counter.
func RecordProgressEvent() {
	DefaultMetrics.ProgressEventsSent.Inc()
}

// UpdateProgressSubscribers updates the subscriber gauge.
func UpdateProgressSubscribers(n int) {
	DefaultMetrics.ProgressSubscribers.Set(float64(n))
}

// RecordLastSuccessfulSolve updates the health timestamp.
func RecordLastSuccessfulSolve(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulSolve.Set(float64(unixSeconds))
}
