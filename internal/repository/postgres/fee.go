package postgres

import (
	"context"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type feeScheduleRepository struct {
	db repository.DBTX
}

func NewFeeScheduleRepository(db repository.DBTX) repository.FeeScheduleRepository {
	return &feeScheduleRepository{db: db}
}

// Snapshot loads the whole fee schedule at once so every unit in a
// billing run is priced from the same table.
func (r *feeScheduleRepository) Snapshot(ctx context.Context) (domain.FeeTable, error) {
	logger.EnterMethod("feeScheduleRepository.Snapshot")

	rows, err := r.db.QueryContext(ctx, `SELECT code, price FROM fee_entries`)
	if err != nil {
		logger.ExitMethodWithError("feeScheduleRepository.Snapshot", err)
		return nil, err
	}
	defer rows.Close()

	table := domain.FeeTable{}
	for rows.Next() {
		var code string
		var price int64
		if err := rows.Scan(&code, &price); err != nil {
			logger.ExitMethodWithError("feeScheduleRepository.Snapshot", err)
			return nil, err
		}
		table[code] = price
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("feeScheduleRepository.Snapshot", err)
		return nil, err
	}

	logger.ExitMethod("feeScheduleRepository.Snapshot", "codes", len(table))
	return table, nil
}
