package postgres

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type bookingRepository struct {
	db repository.DBTX
}

func NewBookingRepository(db repository.DBTX) repository.BookingRepository {
	return &bookingRepository{db: db}
}

// ListUnbilled returns confirmed amenity bookings in [from, to) that
// have not been attached to a bill yet.
func (r *bookingRepository) ListUnbilled(ctx context.Context, unitID int64, from, to time.Time) ([]domain.BookingCharge, error) {
	query := `
		SELECT id, resident_id, unit_id, amenity, price, booked_for
		FROM amenity_bookings
		WHERE unit_id = $1 AND status = 'CONFIRMED' AND bill_id IS NULL
		  AND booked_for >= $2 AND booked_for < $3
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, unitID, from, to)
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.ListUnbilled", err, "unitID", unitID)
		return nil, err
	}
	defer rows.Close()

	charges := []domain.BookingCharge{}
	for rows.Next() {
		var b domain.BookingCharge
		if err := rows.Scan(&b.ID, &b.ResidentID, &b.UnitID, &b.Amenity, &b.Price, &b.BookedFor); err != nil {
			return nil, err
		}
		charges = append(charges, b)
	}
	return charges, rows.Err()
}

// MarkBilled attaches consumed booking charges to the bill.
func (r *bookingRepository) MarkBilled(ctx context.Context, ids []int64, billID int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE amenity_bookings SET bill_id = $1 WHERE id = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, billID, pq.Array(ids))
	if err != nil {
		logger.ExitMethodWithError("bookingRepository.MarkBilled", err, "billID", billID)
	}
	return err
}
