package jobs

import (
	"database/sql"

	"github.com/Haianh25/quanlychungcu-sub001/internal/config"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/observability"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
	"github.com/Haianh25/quanlychungcu-sub001/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	config   *config.Config
	metrics  *observability.Metrics
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Billing service.BillingService
	Penalty service.PenaltyService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cfg *config.Config, metrics *observability.Metrics) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		config:   cfg,
		metrics:  metrics,
	}
}

// Config exposes the runner's configuration to the scheduler.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			if jr.metrics != nil {
				jr.metrics.JobRunsTotal.WithLabelValues(jobName, "panic").Inc()
			}
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
