package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
)

// GenerateMonthlyBills materializes bills for the current calendar
// month. Safe to re-run: already-billed units are skipped.
func (jr *JobRunner) GenerateMonthlyBills() {
	jr.runWithRecovery("GenerateMonthlyBills", func() {
		ctx := context.Background()
		now := time.Now()
		started := now

		result, err := jr.services.Billing.GenerateForPeriod(ctx, int(now.Month()), now.Year())

		if jr.metrics != nil {
			jr.metrics.JobDurationSeconds.WithLabelValues("GenerateMonthlyBills").Observe(time.Since(started).Seconds())
		}
		if err != nil {
			logger.Error("Bill generation failed, run will be retried on next trigger", "error", err)
			if jr.metrics != nil {
				jr.metrics.JobRunsTotal.WithLabelValues("GenerateMonthlyBills", "error").Inc()
			}
			return
		}

		if jr.metrics != nil {
			jr.metrics.JobRunsTotal.WithLabelValues("GenerateMonthlyBills", "success").Inc()
			jr.metrics.BillsGeneratedTotal.Add(float64(result.Generated))
			jr.metrics.BillsSkippedTotal.Add(float64(result.Skipped))
		}

		logger.Info("Monthly bill generation finished",
			"month", result.Month, "year", result.Year,
			"generated", result.Generated, "skipped", result.Skipped,
			"total_amount", result.Total)
	})
}

// RunPenaltyEscalation advances overdue bills through the penalty
// stages. Callers needing per-bill status should read bill state; the
// job only logs its outcome.
func (jr *JobRunner) RunPenaltyEscalation() {
	jr.runWithRecovery("RunPenaltyEscalation", func() {
		ctx := context.Background()
		started := time.Now()

		result, err := jr.services.Penalty.RunEscalation(ctx)

		if jr.metrics != nil {
			jr.metrics.JobDurationSeconds.WithLabelValues("RunPenaltyEscalation").Observe(time.Since(started).Seconds())
		}
		if err != nil {
			logger.Error("Penalty escalation failed, no partial advancement was persisted", "error", err)
			if jr.metrics != nil {
				jr.metrics.JobRunsTotal.WithLabelValues("RunPenaltyEscalation", "error").Inc()
			}
			return
		}

		if jr.metrics != nil {
			jr.metrics.JobRunsTotal.WithLabelValues("RunPenaltyEscalation", "success").Inc()
			for stage := 1; stage <= 3; stage++ {
				if n := result.StageCounts[stage]; n > 0 {
					jr.metrics.PenaltyStagesTotal.WithLabelValues(strconv.Itoa(stage)).Add(float64(n))
				}
			}
			jr.metrics.SuspensionsTotal.Add(float64(result.Suspended))
		}

		logger.Info("Penalty escalation finished",
			"scanned", result.Scanned, "advanced", result.Advanced,
			"suspended", result.Suspended)
	})
}
