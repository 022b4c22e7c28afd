package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
)

var escalationNow = time.Date(2025, 6, 20, 2, 0, 0, 0, time.UTC)

func newTestPenaltyService(db *sqlmockDB) *penaltyService {
	return &penaltyService{
		db:    db.DB,
		store: postgres.NewStore(db.DB),
		now:   func() time.Time { return escalationNow },
	}
}

func escalatableBillRows(bills ...domain.Bill) *sqlmock.Rows {
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

func expectEscalationPreamble(mock sqlmock.Sqlmock, lateFee int64) {
	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs(int64(820002)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT code, price FROM fee_entries").
		WillReturnRows(sqlmock.NewRows([]string{"code", "price"}).AddRow("LATE_FEE", lateFee))
}

func TestPenaltyService_RunEscalation_FirstStage(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := newTestPenaltyService(db)
	ctx := context.Background()

	// Due 4 days ago: past the 3-day grace, short of the 6-day mark.
	due := escalationNow.AddDate(0, 0, -4)
	bill := domain.Bill{
		ID: 1, BillNo: "b-1", ResidentID: 2, UnitID: 3,
		DueDate: due, TotalAmount: 500000,
		Status: domain.BillStatusUnpaid, PenaltyStage: domain.PenaltyStageNone,
	}

	expectEscalationPreamble(mock, 200000)
	mock.ExpectQuery("FROM bills").
		WillReturnRows(escalatableBillRows(bill))
	mock.ExpectExec("UPDATE bills").
		WithArgs(domain.PenaltyStageGraceExceeded, int64(200000), domain.BillStatusOverdue, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bill_items").
		WithArgs(int64(1), "Late Fee (Stage 1)", int64(200000), int32(1), int64(200000), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, time.Now()))
	mock.ExpectCommit()
	mock.ExpectQuery("INSERT INTO notifications").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	result, err := svc.RunEscalation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.StageCounts[1])
	assert.Equal(t, 0, result.StageCounts[2])
	assert.Equal(t, 0, result.Suspended)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyService_RunEscalation_NoCandidatesIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := newTestPenaltyService(db)

	expectEscalationPreamble(mock, 200000)
	mock.ExpectQuery("FROM bills").
		WillReturnRows(escalatableBillRows())
	mock.ExpectCommit()

	result, err := svc.RunEscalation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Scanned)
	assert.Equal(t, 0, result.Advanced)
	assert.Equal(t, 0, result.Suspended)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyService_RunEscalation_AlreadyAtTargetStage(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := newTestPenaltyService(db)

	// Due 4 days ago and already at stage 1: nothing to do.
	bill := domain.Bill{
		ID: 1, BillNo: "b-1", ResidentID: 2, UnitID: 3,
		DueDate: escalationNow.AddDate(0, 0, -4), TotalAmount: 700000,
		Status: domain.BillStatusOverdue, PenaltyStage: domain.PenaltyStageGraceExceeded,
	}

	expectEscalationPreamble(mock, 200000)
	mock.ExpectQuery("FROM bills").
		WillReturnRows(escalatableBillRows(bill))
	mock.ExpectCommit()

	result, err := svc.RunEscalation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Advanced)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyService_RunEscalation_CatchUpToSuspension(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := newTestPenaltyService(db)

	// Due 15 days ago, never escalated: a single run walks the bill
	// through stages 1, 2, and 3, applying each stage's side effects.
	bill := domain.Bill{
		ID: 1, BillNo: "b-1", ResidentID: 2, UnitID: 3,
		DueDate: escalationNow.AddDate(0, 0, -15), TotalAmount: 500000,
		Status: domain.BillStatusUnpaid, PenaltyStage: domain.PenaltyStageNone,
	}

	expectEscalationPreamble(mock, 200000)
	mock.ExpectQuery("FROM bills").
		WillReturnRows(escalatableBillRows(bill))

	// Stage 1: late fee.
	mock.ExpectExec("UPDATE bills").
		WithArgs(domain.PenaltyStageGraceExceeded, int64(200000), domain.BillStatusOverdue, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bill_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(9, time.Now()))

	// Stage 2: second late fee.
	mock.ExpectExec("UPDATE bills").
		WithArgs(domain.PenaltyStageSecondWarning, int64(200000), domain.BillStatusOverdue, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bill_items").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, time.Now()))

	// Stage 3: no fee, resident suspended, admins notified.
	mock.ExpectExec("UPDATE bills").
		WithArgs(domain.PenaltyStageSuspended, int64(0), domain.BillStatusOverdue, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE residents SET is_active").
		WithArgs(sqlmock.AnyArg(), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM residents WHERE is_admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone", "is_active", "is_admin", "created_at"}).
			AddRow(int64(100), "Admin", "admin@example.com", "", true, true, time.Now()))
	mock.ExpectCommit()

	// Post-commit inbox: stage 1, stage 2, suspension, one admin alert.
	for i := 0; i < 4; i++ {
		mock.ExpectQuery("INSERT INTO notifications").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(i+1), time.Now()))
	}

	result, err := svc.RunEscalation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.StageCounts[1])
	assert.Equal(t, 1, result.StageCounts[2])
	assert.Equal(t, 1, result.StageCounts[3])
	assert.Equal(t, 1, result.Suspended)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyService_RunEscalation_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	svc := newTestPenaltyService(db)

	bill := domain.Bill{
		ID: 1, BillNo: "b-1", ResidentID: 2, UnitID: 3,
		DueDate: escalationNow.AddDate(0, 0, -4), TotalAmount: 500000,
		Status: domain.BillStatusUnpaid, PenaltyStage: domain.PenaltyStageNone,
	}

	expectEscalationPreamble(mock, 200000)
	mock.ExpectQuery("FROM bills").
		WillReturnRows(escalatableBillRows(bill))
	mock.ExpectExec("UPDATE bills").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	result, err := svc.RunEscalation(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)

	assert.NoError(t, mock.ExpectationsWereMet())
}
