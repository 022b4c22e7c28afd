package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

type billRepository struct {
	db repository.DBTX
}

// NewBillRepository returns a bill repository over db, which may be a
// *sql.DB or a transaction when the caller needs all-or-nothing writes.
func NewBillRepository(db repository.DBTX) repository.BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, bill_no, resident_id, unit_id, period_month, period_year,
	       issue_date, due_date, total_amount, status, penalty_stage, created_at, updated_at`

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	logger.EnterMethod("billRepository.Create", "unitID", bill.UnitID, "residentID", bill.ResidentID)

	query := `
		INSERT INTO bills (
			bill_no, resident_id, unit_id, period_month, period_year,
			issue_date, due_date, total_amount, status, penalty_stage, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		bill.BillNo, bill.ResidentID, bill.UnitID, bill.PeriodMonth, bill.PeriodYear,
		bill.IssueDate, bill.DueDate, bill.TotalAmount, bill.Status, bill.PenaltyStage, now, now,
	).Scan(&bill.ID, &bill.CreatedAt, &bill.UpdatedAt)

	if err != nil {
		logger.ExitMethodWithError("billRepository.Create", err, "unitID", bill.UnitID)
		return err
	}

	logger.ExitMethod("billRepository.Create", "billID", bill.ID)
	return nil
}

func (r *billRepository) CreateItem(ctx context.Context, item *domain.BillItem) error {
	logger.EnterMethod("billRepository.CreateItem", "billID", item.BillID, "label", item.Label)

	query := `
		INSERT INTO bill_items (bill_id, label, unit_price, quantity, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		item.BillID, item.Label, item.UnitPrice, item.Quantity, item.Total, time.Now(),
	).Scan(&item.ID, &item.CreatedAt)

	if err != nil {
		logger.ExitMethodWithError("billRepository.CreateItem", err, "billID", item.BillID)
		return err
	}

	logger.ExitMethod("billRepository.CreateItem", "itemID", item.ID)
	return nil
}

func (r *billRepository) GetByID(ctx context.Context, id int64) (*domain.Bill, error) {
	logger.EnterMethod("billRepository.GetByID", "billID", id)

	query := `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	bill := &domain.Bill{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bill.ID, &bill.BillNo, &bill.ResidentID, &bill.UnitID, &bill.PeriodMonth, &bill.PeriodYear,
		&bill.IssueDate, &bill.DueDate, &bill.TotalAmount, &bill.Status, &bill.PenaltyStage,
		&bill.CreatedAt, &bill.UpdatedAt,
	)

	if err != nil {
		logger.ExitMethodWithError("billRepository.GetByID", err, "billID", id)
		return nil, err
	}

	logger.ExitMethod("billRepository.GetByID", "billID", id)
	return bill, nil
}

func (r *billRepository) GetItems(ctx context.Context, billID int64) ([]domain.BillItem, error) {
	logger.EnterMethod("billRepository.GetItems", "billID", billID)

	query := `
		SELECT id, bill_id, label, unit_price, quantity, total, created_at
		FROM bill_items
		WHERE bill_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, billID)
	if err != nil {
		logger.ExitMethodWithError("billRepository.GetItems", err, "billID", billID)
		return nil, err
	}
	defer rows.Close()

	items := []domain.BillItem{}
	for rows.Next() {
		var it domain.BillItem
		if err := rows.Scan(&it.ID, &it.BillID, &it.Label, &it.UnitPrice, &it.Quantity, &it.Total, &it.CreatedAt); err != nil {
			logger.ExitMethodWithError("billRepository.GetItems", err, "billID", billID)
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		logger.ExitMethodWithError("billRepository.GetItems", err, "billID", billID)
		return nil, err
	}

	logger.ExitMethod("billRepository.GetItems", "billID", billID, "count", len(items))
	return items, nil
}

func (r *billRepository) ExistsForUnitPeriod(ctx context.Context, unitID int64, month, year int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bills WHERE unit_id = $1 AND period_month = $2 AND period_year = $3)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, unitID, month, year).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *billRepository) ExistsForResidentPeriod(ctx context.Context, residentID int64, month, year int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bills WHERE resident_id = $1 AND period_month = $2 AND period_year = $3)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, residentID, month, year).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *billRepository) ListByResident(ctx context.Context, residentID int64, statuses []domain.BillStatus) ([]domain.Bill, error) {
	logger.EnterMethod("billRepository.ListByResident", "residentID", residentID)

	query := `SELECT ` + billColumns + ` FROM bills WHERE resident_id = $1`
	args := []interface{}{residentID}

	if len(statuses) > 0 {
		statusStrs := make([]string, len(statuses))
		for i, s := range statuses {
			statusStrs[i] = string(s)
		}
		query += " AND status = ANY($2)"
		args = append(args, pq.Array(statusStrs))
	}

	query += " ORDER BY period_year DESC, period_month DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("billRepository.ListByResident", err, "residentID", residentID)
		return nil, err
	}
	defer rows.Close()

	bills, err := scanBills(rows)
	if err != nil {
		logger.ExitMethodWithError("billRepository.ListByResident", err, "residentID", residentID)
		return nil, err
	}

	logger.ExitMethod("billRepository.ListByResident", "residentID", residentID, "count", len(bills))
	return bills, nil
}

// ListEscalatable returns bills still awaiting payment that fell due
// before the cutoff and have not yet reached the terminal stage.
func (r *billRepository) ListEscalatable(ctx context.Context, dueBefore time.Time) ([]domain.Bill, error) {
	logger.EnterMethod("billRepository.ListEscalatable", "dueBefore", dueBefore)

	query := `SELECT ` + billColumns + `
		FROM bills
		WHERE status = ANY($1)
		  AND penalty_stage < $2
		  AND due_date < $3
		ORDER BY id ASC
	`
	statuses := []string{string(domain.BillStatusUnpaid), string(domain.BillStatusOverdue)}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(statuses), domain.PenaltyStageSuspended, dueBefore)
	if err != nil {
		logger.ExitMethodWithError("billRepository.ListEscalatable", err)
		return nil, err
	}
	defer rows.Close()

	bills, err := scanBills(rows)
	if err != nil {
		logger.ExitMethodWithError("billRepository.ListEscalatable", err)
		return nil, err
	}

	logger.ExitMethod("billRepository.ListEscalatable", "count", len(bills))
	return bills, nil
}

// AdvanceStage moves a bill to the given penalty stage, adding the
// stage's fee (0 at the terminal stage) to the running total. The
// matching fee item is inserted separately by the caller in the same
// transaction.
func (r *billRepository) AdvanceStage(ctx context.Context, billID int64, stage int, addAmount int64, status domain.BillStatus) error {
	logger.EnterMethod("billRepository.AdvanceStage", "billID", billID, "stage", stage)

	query := `
		UPDATE bills
		SET penalty_stage = $1, total_amount = total_amount + $2, status = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, stage, addAmount, status, time.Now(), billID)
	if err != nil {
		logger.ExitMethodWithError("billRepository.AdvanceStage", err, "billID", billID)
		return err
	}

	logger.ExitMethod("billRepository.AdvanceStage", "billID", billID, "stage", stage)
	return nil
}

func (r *billRepository) MarkPaid(ctx context.Context, billID int64) error {
	logger.EnterMethod("billRepository.MarkPaid", "billID", billID)

	// Payment clears the status only; penalty_stage is a historical
	// high-water mark and is left untouched.
	query := `UPDATE bills SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, domain.BillStatusPaid, time.Now(), billID)
	if err != nil {
		logger.ExitMethodWithError("billRepository.MarkPaid", err, "billID", billID)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.ExitMethodWithError("billRepository.MarkPaid", sql.ErrNoRows, "billID", billID)
		return sql.ErrNoRows
	}

	logger.ExitMethod("billRepository.MarkPaid", "billID", billID)
	return nil
}

func scanBills(rows *sql.Rows) ([]domain.Bill, error) {
	bills := []domain.Bill{}
	for rows.Next() {
		var b domain.Bill
		err := rows.Scan(
			&b.ID, &b.BillNo, &b.ResidentID, &b.UnitID, &b.PeriodMonth, &b.PeriodYear,
			&b.IssueDate, &b.DueDate, &b.TotalAmount, &b.Status, &b.PenaltyStage,
			&b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bills, nil
}
