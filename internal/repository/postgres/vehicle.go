package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type vehicleRepository struct {
	db repository.DBTX
}

func NewVehicleRepository(db repository.DBTX) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

// ActiveCardCounts aggregates a unit's active parking cards by vehicle type.
func (r *vehicleRepository) ActiveCardCounts(ctx context.Context, unitID int64) (map[domain.VehicleType]int, error) {
	query := `
		SELECT vehicle_type, COUNT(*)
		FROM vehicle_cards
		WHERE unit_id = $1 AND active = TRUE
		GROUP BY vehicle_type
	`
	rows, err := r.db.QueryContext(ctx, query, unitID)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.ActiveCardCounts", err, "unitID", unitID)
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.VehicleType]int{}
	for rows.Next() {
		var t domain.VehicleType
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// ListUnbilledChargeEvents returns approved one-time card fees in
// [from, to) that have not been attached to a bill yet.
func (r *vehicleRepository) ListUnbilledChargeEvents(ctx context.Context, unitID int64, from, to time.Time) ([]domain.VehicleChargeEvent, error) {
	query := `
		SELECT id, resident_id, unit_id, request_type, vehicle_type, amount, approved_on
		FROM vehicle_charge_events
		WHERE unit_id = $1 AND bill_id IS NULL AND approved_on >= $2 AND approved_on < $3
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, unitID, from, to)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.ListUnbilledChargeEvents", err, "unitID", unitID)
		return nil, err
	}
	defer rows.Close()

	events := []domain.VehicleChargeEvent{}
	for rows.Next() {
		var e domain.VehicleChargeEvent
		if err := rows.Scan(&e.ID, &e.ResidentID, &e.UnitID, &e.RequestType, &e.VehicleType, &e.Amount, &e.ApprovedOn); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListUnproratedCards returns active cards issued in [from, to) whose
// first partial month has not been charged yet.
func (r *vehicleRepository) ListUnproratedCards(ctx context.Context, unitID int64, from, to time.Time) ([]domain.VehicleCard, error) {
	query := `
		SELECT id, resident_id, unit_id, vehicle_type, plate_number, issued_on, active
		FROM vehicle_cards
		WHERE unit_id = $1 AND active = TRUE AND prorated_bill_id IS NULL
		  AND issued_on >= $2 AND issued_on < $3
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, unitID, from, to)
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.ListUnproratedCards", err, "unitID", unitID)
		return nil, err
	}
	defer rows.Close()

	cards := []domain.VehicleCard{}
	for rows.Next() {
		var c domain.VehicleCard
		if err := rows.Scan(&c.ID, &c.ResidentID, &c.UnitID, &c.VehicleType, &c.PlateNumber, &c.IssuedOn, &c.Active); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// MarkEventsBilled attaches consumed charge events to the bill so they
// are never picked up by a later generation pass.
func (r *vehicleRepository) MarkEventsBilled(ctx context.Context, ids []int64, billID int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE vehicle_charge_events SET bill_id = $1 WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, billID, pq.Array(ids))
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.MarkEventsBilled", err, "billID", billID)
	}
	return err
}

// MarkCardsProrated records which bill carried each card's first
// partial month.
func (r *vehicleRepository) MarkCardsProrated(ctx context.Context, ids []int64, billID int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE vehicle_cards SET prorated_bill_id = $1 WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, billID, pq.Array(ids))
	if err != nil {
		logger.ExitMethodWithError("vehicleRepository.MarkCardsProrated", err, "billID", billID)
	}
	return err
}
