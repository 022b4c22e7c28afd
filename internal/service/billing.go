package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Haianh25/quanlychungcu-sub001/internal/billing"
	"github.com/Haianh25/quanlychungcu-sub001/internal/config"
	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
	"github.com/Haianh25/quanlychungcu-sub001/internal/utils"
)

// Advisory lock keys serializing runs of the same engine. The scheduler
// should already prevent overlap; the lock makes it a hard guarantee.
const (
	lockKeyBillGeneration = int64(820001)
	lockKeyPenaltyRun     = int64(820002)
)

type billingService struct {
	db    *sql.DB
	store *postgres.Store
	email EmailService
	cfg   config.BillingConfig
	now   func() time.Time
}

func NewBillingService(db *sql.DB, store *postgres.Store, email EmailService, cfg config.BillingConfig) BillingService {
	return &billingService{
		db:    db,
		store: store,
		email: email,
		cfg:   cfg,
		now:   time.Now,
	}
}

// generatedBill is what the run remembers about each new bill so it can
// notify after the transaction commits.
type generatedBill struct {
	BillID     int64
	BillNo     string
	ResidentID int64
	Total      int64
	DueDate    time.Time
}

func (s *billingService) GenerateForPeriod(ctx context.Context, month, year int) (*GenerateResult, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month: %d", month)
	}
	if year < 2000 || year > 2200 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}

	log := logger.WithService("billing")
	log.Info("Starting bill generation", "month", month, "year", year)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin generation transaction: %w", err)
	}
	defer tx.Rollback()

	// Single-flight: a second generation run blocks here until the
	// first commits or rolls back.
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKeyBillGeneration); err != nil {
		return nil, fmt.Errorf("failed to acquire generation lock: %w", err)
	}

	bills := postgres.NewBillRepository(tx)
	feeRepo := postgres.NewFeeScheduleRepository(tx)
	occupancy := postgres.NewOccupancyRepository(tx)
	vehicles := postgres.NewVehicleRepository(tx)
	bookings := postgres.NewBookingRepository(tx)

	fees, err := feeRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee schedule: %w", err)
	}
	warnMissingFees(log, fees)

	units, err := occupancy.ListOccupiedUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupancy snapshot: %w", err)
	}

	now := s.now()
	result := &GenerateResult{Month: month, Year: year}
	generated := []generatedBill{}

	for _, unit := range units {
		// Idempotency: checked per unit so a retry after a failed run
		// resumes from the first un-billed unit.
		exists, err := bills.ExistsForUnitPeriod(ctx, unit.UnitID, month, year)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing bill for unit %d: %w", unit.UnitID, err)
		}
		if exists {
			result.Skipped++
			continue
		}

		snap, err := s.assembleSnapshot(ctx, vehicles, bookings, unit, month, year)
		if err != nil {
			return nil, err
		}

		st := billing.ComposeMonthly(*snap, fees, month, year)

		// A zero-total bill is still created: it anchors the unit's
		// penalty tracking for the period.
		bill := &domain.Bill{
			BillNo:       uuid.NewString(),
			ResidentID:   unit.ResidentID,
			UnitID:       unit.UnitID,
			PeriodMonth:  month,
			PeriodYear:   year,
			IssueDate:    now,
			DueDate:      now.AddDate(0, 0, s.cfg.DueGraceDays),
			TotalAmount:  st.Total,
			Status:       domain.BillStatusUnpaid,
			PenaltyStage: domain.PenaltyStageNone,
		}
		if err := bills.Create(ctx, bill); err != nil {
			return nil, fmt.Errorf("failed to insert bill for unit %d: %w", unit.UnitID, err)
		}

		for _, line := range st.Lines {
			item := &domain.BillItem{
				BillID:    bill.ID,
				Label:     line.Label,
				UnitPrice: line.UnitPrice,
				Quantity:  line.Quantity,
				Total:     line.Total,
			}
			if err := bills.CreateItem(ctx, item); err != nil {
				return nil, fmt.Errorf("failed to insert bill item for bill %d: %w", bill.ID, err)
			}
		}

		// Attach consumed one-time charges so they are never billed twice.
		if err := vehicles.MarkEventsBilled(ctx, st.ChargeEventIDs, bill.ID); err != nil {
			return nil, fmt.Errorf("failed to mark charge events billed for bill %d: %w", bill.ID, err)
		}
		if err := vehicles.MarkCardsProrated(ctx, st.ProratedCardIDs, bill.ID); err != nil {
			return nil, fmt.Errorf("failed to mark cards prorated for bill %d: %w", bill.ID, err)
		}
		if err := bookings.MarkBilled(ctx, st.BookingIDs, bill.ID); err != nil {
			return nil, fmt.Errorf("failed to mark bookings billed for bill %d: %w", bill.ID, err)
		}

		result.Generated++
		result.Total += st.Total
		generated = append(generated, generatedBill{
			BillID:     bill.ID,
			BillNo:     bill.BillNo,
			ResidentID: bill.ResidentID,
			Total:      bill.TotalAmount,
			DueDate:    bill.DueDate,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit generation transaction: %w", err)
	}

	// Notifications and email are best-effort after the commit; a slow
	// or failing sink must never undo persisted bills.
	s.notifyGenerated(ctx, month, year, generated)

	log.Info("Bill generation completed",
		"month", month, "year", year,
		"generated", result.Generated, "skipped", result.Skipped,
		"total_amount", result.Total)
	return result, nil
}

// assembleSnapshot gathers one unit's billable inputs. Recurring fees
// cover the issue period; one-time charges, card prorations, and
// bookings settle the prior month.
func (s *billingService) assembleSnapshot(
	ctx context.Context,
	vehicles repository.VehicleRepository,
	bookings repository.BookingRepository,
	unit domain.OccupiedUnit,
	month, year int,
) (*billing.UnitSnapshot, error) {
	priorMonth, priorYear := utils.PreviousPeriod(month, year)
	priorStart, priorEnd := utils.PeriodBounds(priorMonth, priorYear)

	counts, err := vehicles.ActiveCardCounts(ctx, unit.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to count vehicles for unit %d: %w", unit.UnitID, err)
	}
	events, err := vehicles.ListUnbilledChargeEvents(ctx, unit.UnitID, priorStart, priorEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge events for unit %d: %w", unit.UnitID, err)
	}
	newCards, err := vehicles.ListUnproratedCards(ctx, unit.UnitID, priorStart, priorEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load new cards for unit %d: %w", unit.UnitID, err)
	}
	bookingCharges, err := bookings.ListUnbilled(ctx, unit.UnitID, priorStart, priorEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for unit %d: %w", unit.UnitID, err)
	}

	snap := &billing.UnitSnapshot{
		UnitID:     unit.UnitID,
		ResidentID: unit.ResidentID,
		AreaSqm:    unit.AreaSqm,
	}

	// Stable line order regardless of map iteration.
	types := make([]domain.VehicleType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		snap.Vehicles = append(snap.Vehicles, billing.VehicleCount{Type: t, Count: counts[t]})
	}

	for _, e := range events {
		snap.OneTimeCharges = append(snap.OneTimeCharges, billing.OneTimeCharge{
			EventID:     e.ID,
			RequestType: e.RequestType,
			VehicleType: e.VehicleType,
			Amount:      e.Amount,
		})
	}
	for _, c := range newCards {
		snap.NewCards = append(snap.NewCards, billing.NewCard{
			CardID:    c.ID,
			Type:      c.VehicleType,
			IssuedDay: c.IssuedOn.Day(),
		})
	}
	for _, b := range bookingCharges {
		snap.Bookings = append(snap.Bookings, billing.Booking{
			ChargeID: b.ID,
			Amenity:  b.Amenity,
			Amount:   b.Price,
		})
	}

	return snap, nil
}

func (s *billingService) notifyGenerated(ctx context.Context, month, year int, generated []generatedBill) {
	log := logger.WithService("billing")
	for _, g := range generated {
		note := &domain.Notification{
			ResidentID: g.ResidentID,
			Title:      fmt.Sprintf("Invoice for %02d/%d", month, year),
			Message: fmt.Sprintf("Your invoice %s has been issued. Total: %d VND, due %s.",
				g.BillNo, g.Total, g.DueDate.Format("2006-01-02")),
			LinkTo: fmt.Sprintf("/bills/%d", g.BillID),
		}
		if err := s.store.NotificationRepository.Create(ctx, note); err != nil {
			log.Error("Failed to create bill notification", "bill_id", g.BillID, "error", err)
		}

		resident, err := s.store.ResidentRepository.GetByID(ctx, g.ResidentID)
		if err != nil {
			log.Error("Failed to load resident for bill email", "resident_id", g.ResidentID, "error", err)
			continue
		}
		if resident.Email == "" {
			continue
		}
		summary := BillEmailSummary{
			BillNo:      g.BillNo,
			PeriodMonth: month,
			PeriodYear:  year,
			TotalAmount: g.Total,
			DueDate:     g.DueDate,
		}
		if err := s.email.SendBillEmail(ctx, resident.Email, resident.FullName, summary); err != nil {
			log.Error("Failed to send bill email", "bill_id", g.BillID, "error", err)
		}
	}
}

// GenerateMoveIn bills the remaining days of the current month when a
// unit is assigned mid-period. It runs inside the caller's occupancy
// transaction: a proration failure rolls the assignment back too, so a
// unit is never assigned without being billed.
func (s *billingService) GenerateMoveIn(ctx context.Context, tx repository.DBTX, residentID, unitID int64) error {
	bills := postgres.NewBillRepository(tx)
	feeRepo := postgres.NewFeeScheduleRepository(tx)
	occupancy := postgres.NewOccupancyRepository(tx)
	notes := postgres.NewNotificationRepository(tx)

	now := s.now()
	month, year := int(now.Month()), now.Year()

	// A full-period bill takes precedence; one bill per month at most.
	exists, err := bills.ExistsForResidentPeriod(ctx, residentID, month, year)
	if err != nil {
		return fmt.Errorf("failed to check existing bill for resident %d: %w", residentID, err)
	}
	if exists {
		logger.Info("Move-in proration skipped, resident already billed this month",
			"resident_id", residentID, "month", month, "year", year)
		return nil
	}

	daysInMonth := utils.DaysInMonth(year, month)
	daysToCharge := utils.DaysRemainingInMonth(now)
	if daysToCharge <= 0 {
		return nil
	}

	fees, err := feeRepo.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load fee schedule: %w", err)
	}
	area, err := occupancy.UnitArea(ctx, unitID)
	if err != nil {
		return fmt.Errorf("failed to load unit %d area: %w", unitID, err)
	}

	st := billing.ComposeMoveIn(area, fees, daysToCharge, daysInMonth)
	if st.Total == 0 {
		logger.Info("Move-in proration resolved to zero, no bill created",
			"resident_id", residentID, "unit_id", unitID)
		return nil
	}

	bill := &domain.Bill{
		BillNo:       uuid.NewString(),
		ResidentID:   residentID,
		UnitID:       unitID,
		PeriodMonth:  month,
		PeriodYear:   year,
		IssueDate:    now,
		DueDate:      now.AddDate(0, 0, s.cfg.MoveInDueDays),
		TotalAmount:  st.Total,
		Status:       domain.BillStatusUnpaid,
		PenaltyStage: domain.PenaltyStageNone,
	}
	if err := bills.Create(ctx, bill); err != nil {
		return fmt.Errorf("failed to insert move-in bill: %w", err)
	}
	for _, line := range st.Lines {
		item := &domain.BillItem{
			BillID:    bill.ID,
			Label:     line.Label,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     line.Total,
		}
		if err := bills.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to insert move-in bill item: %w", err)
		}
	}

	note := &domain.Notification{
		ResidentID: residentID,
		Title:      "Welcome! Your first invoice",
		Message: fmt.Sprintf("Invoice %s covers the remaining %d days of this month. Total: %d VND, due %s.",
			bill.BillNo, daysToCharge, bill.TotalAmount, bill.DueDate.Format("2006-01-02")),
		LinkTo: fmt.Sprintf("/bills/%d", bill.ID),
	}
	if err := notes.Create(ctx, note); err != nil {
		return fmt.Errorf("failed to create move-in notification: %w", err)
	}

	logger.Info("Move-in bill created",
		"bill_id", bill.ID, "resident_id", residentID, "unit_id", unitID,
		"days_charged", daysToCharge, "total_amount", bill.TotalAmount)
	return nil
}

func warnMissingFees(log *slog.Logger, fees domain.FeeTable) {
	for _, code := range []string{domain.FeeManagementPerSqm, domain.FeeManagementFlat} {
		if fees.Price(code) > 0 {
			return
		}
	}
	log.Warn("No management fee configured, bills will carry no management line")
}
