package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for workflow and provider activity, exported via /metrics.
var (
	// StepExecutions counts workflow step runs by step and outcome.
	StepExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investpath",
		Subsystem: "workflow",
		Name:      "step_executions_total",
		Help:      "Workflow step executions by step and outcome.",
	}, []string{"step", "outcome"})

	// StepDuration observes wall-clock step execution time.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "investpath",
		Subsystem: "workflow",
		Name:      "step_duration_seconds",
		Help:      "Workflow step execution duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"step"})

	// ProviderFetches counts upstream fetches by provider and outcome.
	ProviderFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investpath",
		Subsystem: "providers",
		Name:      "fetches_total",
		Help:      "Provider fetches by provider and outcome.",
	}, []string{"provider", "outcome"})

	// CacheLookups counts cache hits and misses by data category.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "investpath",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by category and result.",
	}, []string{"category", "result"})
)

// ObserveStep records one step execution.
func ObserveStep(step string, success bool, seconds float64) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	StepExecutions.WithLabelValues(step, outcome).Inc()
	StepDuration.WithLabelValues(step).Observe(seconds)
}

// ObserveFetch records one provider fetch.
func ObserveFetch(provider string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderFetches.WithLabelValues(provider, outcome).Inc()
}

// ObserveCache records one cache lookup.
func ObserveCache(category string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(category, result).Inc()
}
