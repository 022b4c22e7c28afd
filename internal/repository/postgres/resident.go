package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type residentRepository struct {
	db repository.DBTX
}

func NewResidentRepository(db repository.DBTX) repository.ResidentRepository {
	return &residentRepository{db: db}
}

const residentColumns = `id, full_name, COALESCE(email, ''), COALESCE(phone, ''), is_active, is_admin, created_at`

func (r *residentRepository) GetByID(ctx context.Context, id int64) (*domain.Resident, error) {
	logger.EnterMethod("residentRepository.GetByID", "residentID", id)

	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`

	res := &domain.Resident{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.FullName, &res.Email, &res.Phone, &res.IsActive, &res.IsAdmin, &res.CreatedAt,
	)
	if err != nil {
		logger.ExitMethodWithError("residentRepository.GetByID", err, "residentID", id)
		return nil, err
	}

	logger.ExitMethod("residentRepository.GetByID", "residentID", id)
	return res, nil
}

func (r *residentRepository) ListAdmins(ctx context.Context) ([]domain.Resident, error) {
	logger.EnterMethod("residentRepository.ListAdmins")

	query := `SELECT ` + residentColumns + ` FROM residents WHERE is_admin = TRUE ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.ExitMethodWithError("residentRepository.ListAdmins", err)
		return nil, err
	}
	defer rows.Close()

	admins := []domain.Resident{}
	for rows.Next() {
		var res domain.Resident
		if err := rows.Scan(&res.ID, &res.FullName, &res.Email, &res.Phone, &res.IsActive, &res.IsAdmin, &res.CreatedAt); err != nil {
			logger.ExitMethodWithError("residentRepository.ListAdmins", err)
			return nil, err
		}
		admins = append(admins, res)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("residentRepository.ListAdmins", err)
		return nil, err
	}

	logger.ExitMethod("residentRepository.ListAdmins", "count", len(admins))
	return admins, nil
}

// Suspend deactivates a resident account. Called by the penalty engine
// at the terminal stage, inside the same transaction as the bill's
// stage update.
func (r *residentRepository) Suspend(ctx context.Context, id int64) error {
	logger.EnterMethod("residentRepository.Suspend", "residentID", id)

	query := `UPDATE residents SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		logger.ExitMethodWithError("residentRepository.Suspend", err, "residentID", id)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.ExitMethodWithError("residentRepository.Suspend", sql.ErrNoRows, "residentID", id)
		return sql.ErrNoRows
	}

	logger.ExitMethod("residentRepository.Suspend", "residentID", id)
	return nil
}
