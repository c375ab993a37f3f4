package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightsales_queries_total",
			Help: "Total number of natural-language queries by result.",
		},
		[]string{"result"},
	)
	queryAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insightsales_query_attempts",
			Help:    "Generation attempts consumed per natural-language query.",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insightsales_query_duration_seconds",
			Help:    "End-to-end latency of natural-language queries in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	validationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightsales_validation_failures_total",
			Help: "Total number of candidate SQL statements rejected by validation, by stage.",
		},
		[]string{"stage"},
	)
	executionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insightsales_execution_failures_total",
			Help: "Total number of SQL executions rejected by the database.",
		},
	)
	generationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insightsales_generation_failures_total",
			Help: "Total number of failed SQL generation calls to the model.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		queriesTotal,
		queryAttempts,
		queryDurationSeconds,
		validationFailuresTotal,
		executionFailuresTotal,
		generationFailuresTotal,
	)
}

func ObserveQueryProcessed(success bool, attempts int, elapsed time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	queriesTotal.WithLabelValues(result).Inc()
	if attempts > 0 {
		queryAttempts.Observe(float64(attempts))
	}
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func IncrementValidationFailure(stage string) {
	validationFailuresTotal.WithLabelValues(stage).Inc()
}

func IncrementExecutionFailure() {
	executionFailuresTotal.Inc()
}

func IncrementGenerationFailure() {
	generationFailuresTotal.Inc()
}
