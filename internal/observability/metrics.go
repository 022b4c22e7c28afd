package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics exported by the billing engine.
type Metrics struct {
	JobRunsTotal        *prometheus.CounterVec
	JobDurationSeconds  *prometheus.HistogramVec
	BillsGeneratedTotal prometheus.Counter
	BillsSkippedTotal   prometheus.Counter
	PenaltyStagesTotal  *prometheus.CounterVec
	SuspensionsTotal    prometheus.Counter
}

// NewMetrics creates and registers all metrics on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		JobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_job_runs_total",
				Help: "Total scheduled job runs by job and outcome",
			},
			[]string{"job", "outcome"},
		),
		JobDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "billing_job_duration_seconds",
				Help:    "Scheduled job duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		BillsGeneratedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_bills_generated_total",
				Help: "Bills materialized by the monthly generator",
			},
		),
		BillsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_bills_skipped_total",
				Help: "Units skipped because a bill already existed for the period",
			},
		),
		PenaltyStagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_penalty_stage_advancements_total",
				Help: "Penalty stage advancements by target stage",
			},
			[]string{"stage"},
		),
		SuspensionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_suspensions_total",
				Help: "Resident accounts suspended at the terminal penalty stage",
			},
		),
	}

	registry.MustRegister(
		m.JobRunsTotal,
		m.JobDurationSeconds,
		m.BillsGeneratedTotal,
		m.BillsSkippedTotal,
		m.PenaltyStagesTotal,
		m.SuspensionsTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for the registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
