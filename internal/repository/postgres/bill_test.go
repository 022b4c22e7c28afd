package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
)

func TestBillRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		bill := &domain.Bill{
			BillNo:       "b-123",
			ResidentID:   2,
			UnitID:       5,
			PeriodMonth:  6,
			PeriodYear:   2025,
			IssueDate:    now,
			DueDate:      now.AddDate(0, 0, 10),
			TotalAmount:  1500000,
			Status:       domain.BillStatusUnpaid,
			PenaltyStage: domain.PenaltyStageNone,
		}

		mock.ExpectQuery("INSERT INTO bills").
			WithArgs(bill.BillNo, bill.ResidentID, bill.UnitID, bill.PeriodMonth, bill.PeriodYear,
				bill.IssueDate, bill.DueDate, bill.TotalAmount, bill.Status, bill.PenaltyStage,
				sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

		err := repo.Create(ctx, bill)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), bill.ID)
	})
}

func TestBillRepository_CreateItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		item := &domain.BillItem{
			BillID:    42,
			Label:     "Management fee (75.5 m2)",
			UnitPrice: 15000,
			Quantity:  1,
			Total:     1132500,
		}

		mock.ExpectQuery("INSERT INTO bill_items").
			WithArgs(item.BillID, item.Label, item.UnitPrice, item.Quantity, item.Total, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, time.Now()))

		err := repo.CreateItem(ctx, item)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), item.ID)
	})
}

func TestBillRepository_ExistsForUnitPeriod(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(5), 6, 2025).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsForUnitPeriod(ctx, 5, 6, 2025)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("NotExists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(5), 7, 2025).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsForUnitPeriod(ctx, 5, 7, 2025)
		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func billRows(bills ...domain.Bill) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "bill_no", "resident_id", "unit_id", "period_month", "period_year",
		"issue_date", "due_date", "total_amount", "status", "penalty_stage", "created_at", "updated_at",
	})
	for _, b := range bills {
		rows.AddRow(b.ID, b.BillNo, b.ResidentID, b.UnitID, b.PeriodMonth, b.PeriodYear,
			b.IssueDate, b.DueDate, b.TotalAmount, b.Status, b.PenaltyStage, b.CreatedAt, b.UpdatedAt)
	}
	return rows
}

func TestBillRepository_ListEscalatable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		cutoff := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
		due := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
		bill := domain.Bill{
			ID: 1, BillNo: "b-1", ResidentID: 2, UnitID: 3,
			PeriodMonth: 6, PeriodYear: 2025,
			IssueDate: due.AddDate(0, 0, -10), DueDate: due,
			TotalAmount: 500000, Status: domain.BillStatusUnpaid,
			PenaltyStage: domain.PenaltyStageNone,
			CreatedAt:    due, UpdatedAt: due,
		}

		mock.ExpectQuery("SELECT (.+) FROM bills").
			WithArgs(sqlmock.AnyArg(), domain.PenaltyStageSuspended, cutoff).
			WillReturnRows(billRows(bill))

		got, err := repo.ListEscalatable(ctx, cutoff)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, domain.BillStatusUnpaid, got[0].Status)
	})

	t.Run("Empty", func(t *testing.T) {
		cutoff := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery("SELECT (.+) FROM bills").
			WithArgs(sqlmock.AnyArg(), domain.PenaltyStageSuspended, cutoff).
			WillReturnRows(billRows())

		got, err := repo.ListEscalatable(ctx, cutoff)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestBillRepository_AdvanceStage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bills").
			WithArgs(domain.PenaltyStageGraceExceeded, int64(200000), domain.BillStatusOverdue, sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.AdvanceStage(ctx, 42, domain.PenaltyStageGraceExceeded, 200000, domain.BillStatusOverdue)
		assert.NoError(t, err)
	})
}

func TestBillRepository_MarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewBillRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bills SET status").
			WithArgs(domain.BillStatusPaid, sqlmock.AnyArg(), int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkPaid(ctx, 42)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE bills SET status").
			WithArgs(domain.BillStatusPaid, sqlmock.AnyArg(), int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkPaid(ctx, 99)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
