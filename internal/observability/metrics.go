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
	// Ingestion metrics
	EventsRead       prometheus.Counter
	EventsNormalized prometheus.Counter
	EventsSkipped    *prometheus.CounterVec

	// Scoring metrics
	WalletsScored     prometheus.Gauge
	DegenerateRanges  *prometheus.CounterVec
	ScoreDistribution prometheus.Histogram

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "wallet_credit_score"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Ingestion metrics
		EventsRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_read_total",
			Help:      "Total number of raw events read from the source",
		}),
		EventsNormalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_normalized_total",
			Help:      "Total number of raw events turned into transaction entries",
		}),
		EventsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_skipped_total",
			Help:      "Total number of malformed events skipped by field",
		}, []string{"field"}),

		// Scoring metrics
		WalletsScored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "wallets_scored",
			Help:      "Number of wallets scored in the last run",
		}),
		DegenerateRanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "degenerate_ranges_total",
			Help:      "Zero-width population ranges handled by zero fill",
		}, []string{"stage", "column"}),
		ScoreDistribution: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoring",
			Name:      "credit_score",
			Help:      "Distribution of final credit scores",
			Buckets:   prometheus.LinearBuckets(100, 100, 10),
		}),

		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"stage"}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of last successful scoring run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// WriteTextfile dumps the default registry in node_exporter textfile format.
// Batch runs exit before any scrape, so this is how they publish metrics.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordEventRead increments the events read counter.
func RecordEventRead(n int) {
	DefaultMetrics.EventsRead.Add(float64(n))
}

// RecordEventNormalized increments the normalized events counter.
func RecordEventNormalized() {
	DefaultMetrics.EventsNormalized.Inc()
}

// RecordEventSkipped records a malformed event.
func RecordEventSkipped(field string) {
	DefaultMetrics.EventsSkipped.WithLabelValues(field).Inc()
}

// RecordDegenerateRange records a zero-width range handled by zero fill.
func RecordDegenerateRange(stage, column string) {
	DefaultMetrics.DegenerateRanges.WithLabelValues(stage, column).Inc()
}

// RecordScores records the final score distribution of a run.
func RecordScores(scores []int) {
	DefaultMetrics.WalletsScored.Set(float64(len(scores)))
	for _, s := range scores {
		DefaultMetrics.ScoreDistribution.Observe(float64(s))
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordStage records the duration of one pipeline stage.
func RecordStage(stage string, seconds float64) {
	DefaultMetrics.PipelineDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordPipelineRun records a pipeline run outcome.
func RecordPipelineRun(status string, unixSeconds int64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		DefaultMetrics.LastSuccessfulRun.Set(float64(unixSeconds))
	}
}
