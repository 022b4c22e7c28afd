package postgres

import (
	"context"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type occupancyRepository struct {
	db repository.DBTX
}

func NewOccupancyRepository(db repository.DBTX) repository.OccupancyRepository {
	return &occupancyRepository{db: db}
}

// ListOccupiedUnits returns the occupancy snapshot the bill generator
// iterates, in stable unit-id order. area_sqm is 0 for legacy units
// with no recorded area.
func (r *occupancyRepository) ListOccupiedUnits(ctx context.Context) ([]domain.OccupiedUnit, error) {
	logger.EnterMethod("occupancyRepository.ListOccupiedUnits")

	query := `
		SELECT o.unit_id, u.code, o.resident_id, COALESCE(u.area_sqm, 0)
		FROM occupancies o
		JOIN units u ON u.id = o.unit_id
		WHERE o.active = TRUE
		ORDER BY o.unit_id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.ExitMethodWithError("occupancyRepository.ListOccupiedUnits", err)
		return nil, err
	}
	defer rows.Close()

	units := []domain.OccupiedUnit{}
	for rows.Next() {
		var u domain.OccupiedUnit
		if err := rows.Scan(&u.UnitID, &u.UnitCode, &u.ResidentID, &u.AreaSqm); err != nil {
			logger.ExitMethodWithError("occupancyRepository.ListOccupiedUnits", err)
			return nil, err
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("occupancyRepository.ListOccupiedUnits", err)
		return nil, err
	}

	logger.ExitMethod("occupancyRepository.ListOccupiedUnits", "count", len(units))
	return units, nil
}

// CreateAssignment records a resident moving into a unit. Runs in the
// caller's transaction together with move-in proration.
func (r *occupancyRepository) CreateAssignment(ctx context.Context, unitID, residentID int64, movedInOn time.Time) error {
	logger.EnterMethod("occupancyRepository.CreateAssignment", "unitID", unitID, "residentID", residentID)

	query := `
		INSERT INTO occupancies (unit_id, resident_id, active, moved_in_on)
		VALUES ($1, $2, TRUE, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, unitID, residentID, movedInOn); err != nil {
		logger.ExitMethodWithError("occupancyRepository.CreateAssignment", err, "unitID", unitID)
		return err
	}

	logger.ExitMethod("occupancyRepository.CreateAssignment", "unitID", unitID)
	return nil
}

// UnitArea returns a unit's recorded area, 0 when none is on file.
func (r *occupancyRepository) UnitArea(ctx context.Context, unitID int64) (float64, error) {
	var area float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(area_sqm, 0) FROM units WHERE id = $1`, unitID,
	).Scan(&area)
	if err != nil {
		logger.ExitMethodWithError("occupancyRepository.UnitArea", err, "unitID", unitID)
		return 0, err
	}
	return area, nil
}
