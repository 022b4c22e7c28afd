package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/billing"
	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
)

type penaltyService struct {
	db    *sql.DB
	store *postgres.Store
	now   func() time.Time
}

func NewPenaltyService(db *sql.DB, store *postgres.Store) PenaltyService {
	return &penaltyService{
		db:    db,
		store: store,
		now:   time.Now,
	}
}

// pendingNote is an inbox notification queued during the transaction
// and written only after it commits.
type pendingNote struct {
	ResidentID int64
	Title      string
	Message    string
	LinkTo     string
}

// RunEscalation advances every eligible unpaid bill to the stage its
// elapsed time past due date dictates, in one transaction. A bill that
// missed scheduler runs catches up across several stages in a single
// pass; re-running when nothing qualifies is a no-op.
func (s *penaltyService) RunEscalation(ctx context.Context) (*EscalationResult, error) {
	log := logger.WithService("penalty")
	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin escalation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyPenaltyRun); err != nil {
		return nil, fmt.Errorf("failed to acquire escalation lock: %w", err)
	}

	bills := postgres.NewBillRepository(tx)
	residents := postgres.NewResidentRepository(tx)
	feeRepo := postgres.NewFeeScheduleRepository(tx)

	fees, err := feeRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee schedule: %w", err)
	}
	lateFee := fees.Price(domain.FeeLatePayment)
	if lateFee == 0 {
		log.Warn("No late fee configured, stages 1 and 2 will add no amount")
	}

	// Everything due more than the stage-1 grace ago is a candidate;
	// the per-bill target stage decides how far each one moves.
	cutoff := now.AddDate(0, 0, -billing.Stage1AfterDays)
	candidates, err := bills.ListEscalatable(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalatable bills: %w", err)
	}

	var admins []domain.Resident
	result := &EscalationResult{Scanned: len(candidates)}
	notes := []pendingNote{}

	for _, bill := range candidates {
		target := billing.StageFor(now, bill.DueDate)
		if target <= bill.PenaltyStage {
			continue
		}

		for stage := bill.PenaltyStage + 1; stage <= target; stage++ {
			switch stage {
			case domain.PenaltyStageGraceExceeded, domain.PenaltyStageSecondWarning:
				if err := bills.AdvanceStage(ctx, bill.ID, stage, lateFee, domain.BillStatusOverdue); err != nil {
					return nil, fmt.Errorf("failed to advance bill %d to stage %d: %w", bill.ID, stage, err)
				}
				item := &domain.BillItem{
					BillID:    bill.ID,
					Label:     billing.LateFeeLabel(stage),
					UnitPrice: lateFee,
					Quantity:  1,
					Total:     lateFee,
				}
				if err := bills.CreateItem(ctx, item); err != nil {
					return nil, fmt.Errorf("failed to insert late fee item for bill %d: %w", bill.ID, err)
				}
				notes = append(notes, stageNote(bill, stage, lateFee))

			case domain.PenaltyStageSuspended:
				// No further fee at the terminal stage; the cost is the
				// suspension itself, atomic with the stage update.
				if err := bills.AdvanceStage(ctx, bill.ID, stage, 0, domain.BillStatusOverdue); err != nil {
					return nil, fmt.Errorf("failed to advance bill %d to stage %d: %w", bill.ID, stage, err)
				}
				if err := residents.Suspend(ctx, bill.ResidentID); err != nil {
					return nil, fmt.Errorf("failed to suspend resident %d: %w", bill.ResidentID, err)
				}
				if admins == nil {
					if admins, err = residents.ListAdmins(ctx); err != nil {
						return nil, fmt.Errorf("failed to list admins: %w", err)
					}
				}
				notes = append(notes, stageNote(bill, stage, 0))
				for _, admin := range admins {
					notes = append(notes, pendingNote{
						ResidentID: admin.ID,
						Title:      "Resident account suspended",
						Message: fmt.Sprintf("Resident %d was suspended over unpaid invoice %s (%d VND outstanding).",
							bill.ResidentID, bill.BillNo, bill.TotalAmount),
						LinkTo: fmt.Sprintf("/bills/%d", bill.ID),
					})
				}
				result.Suspended++
			}
			result.StageCounts[stage]++
		}
		result.Advanced++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit escalation transaction: %w", err)
	}

	// Inbox writes are best-effort once the stage changes are durable.
	for _, n := range notes {
		note := &domain.Notification{
			ResidentID: n.ResidentID,
			Title:      n.Title,
			Message:    n.Message,
			LinkTo:     n.LinkTo,
		}
		if err := s.store.NotificationRepository.Create(ctx, note); err != nil {
			log.Error("Failed to create escalation notification", "resident_id", n.ResidentID, "error", err)
		}
	}

	log.Info("Penalty escalation completed",
		"scanned", result.Scanned, "advanced", result.Advanced,
		"stage1", result.StageCounts[1], "stage2", result.StageCounts[2],
		"suspended", result.Suspended)
	return result, nil
}

func stageNote(bill domain.Bill, stage int, lateFee int64) pendingNote {
	link := fmt.Sprintf("/bills/%d", bill.ID)
	switch stage {
	case domain.PenaltyStageGraceExceeded:
		return pendingNote{
			ResidentID: bill.ResidentID,
			Title:      "Invoice overdue",
			Message: fmt.Sprintf("Invoice %s is past due. A late fee of %d VND was added. Please settle it soon.",
				bill.BillNo, lateFee),
			LinkTo: link,
		}
	case domain.PenaltyStageSecondWarning:
		return pendingNote{
			ResidentID: bill.ResidentID,
			Title:      "Final warning: invoice overdue",
			Message: fmt.Sprintf("Invoice %s remains unpaid. A second late fee of %d VND was added. Your account will be suspended if payment is not received.",
				bill.BillNo, lateFee),
			LinkTo: link,
		}
	default:
		return pendingNote{
			ResidentID: bill.ResidentID,
			Title:      "Account suspended",
			Message: fmt.Sprintf("Your account has been suspended over unpaid invoice %s. Contact the management office to restore access.",
				bill.BillNo),
			LinkTo: link,
		}
	}
}
