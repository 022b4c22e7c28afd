package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
	"github.com/Haianh25/quanlychungcu-sub001/internal/service"
)

type fakeBillingService struct {
	generateResult *service.GenerateResult
	generateErr    error
	moveInErr      error
}

func (f *fakeBillingService) GenerateForPeriod(_ context.Context, month, year int) (*service.GenerateResult, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	if f.generateResult != nil {
		return f.generateResult, nil
	}
	return &service.GenerateResult{Month: month, Year: year}, nil
}

func (f *fakeBillingService) GenerateMoveIn(context.Context, repository.DBTX, int64, int64) error {
	return f.moveInErr
}

type fakePenaltyService struct {
	result *service.EscalationResult
	err    error
}

func (f *fakePenaltyService) RunEscalation(context.Context) (*service.EscalationResult, error) {
	return f.result, f.err
}

func TestBillingHandler_HandleGenerate(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	billing := &fakeBillingService{generateResult: &service.GenerateResult{Month: 6, Year: 2025, Generated: 12}}
	h := NewBillingHandler(db, postgres.NewStore(db), billing, &fakePenaltyService{})

	body, _ := json.Marshal(map[string]int{"month": 6, "year": 2025})
	req := httptest.NewRequest(http.MethodPost, "/api/billing/generate", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.HandleGenerate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 12, resp.Count)
}

func TestBillingHandler_HandleGenerate_InvalidBody(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBillingHandler(db, postgres.NewStore(db), &fakeBillingService{}, &fakePenaltyService{})

	req := httptest.NewRequest(http.MethodPost, "/api/billing/generate", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	h.HandleGenerate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBillingHandler_HandleGetBill(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBillingHandler(db, postgres.NewStore(db), &fakeBillingService{}, &fakePenaltyService{})

	now := time.Now()
	mock.ExpectQuery("FROM bills WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bill_no", "resident_id", "unit_id", "period_month", "period_year",
			"issue_date", "due_date", "total_amount", "status", "penalty_stage", "created_at", "updated_at",
		}).AddRow(int64(42), "b-42", int64(2), int64(5), 6, 2025, now, now.AddDate(0, 0, 10),
			int64(750000), domain.BillStatusUnpaid, domain.PenaltyStageNone, now, now))
	mock.ExpectQuery("FROM bill_items").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bill_id", "label", "unit_price", "quantity", "total", "created_at"}).
			AddRow(int64(1), int64(42), "Management fee (50.0 m2)", int64(15000), int32(1), int64(750000), now))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/bills/42", nil), map[string]string{"id": "42"})
	rec := httptest.NewRecorder()

	h.HandleGetBill(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var detail struct {
		Bill  domain.Bill       `json:"bill"`
		Items []domain.BillItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, int64(42), detail.Bill.ID)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, int64(750000), detail.Items[0].Total)
}

func TestBillingHandler_HandleGetBill_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBillingHandler(db, postgres.NewStore(db), &fakeBillingService{}, &fakePenaltyService{})

	mock.ExpectQuery("FROM bills WHERE id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/api/bills/99", nil), map[string]string{"id": "99"})
	rec := httptest.NewRecorder()

	h.HandleGetBill(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBillingHandler_HandlePayBill_AlreadyPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBillingHandler(db, postgres.NewStore(db), &fakeBillingService{}, &fakePenaltyService{})

	now := time.Now()
	mock.ExpectQuery("FROM bills WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bill_no", "resident_id", "unit_id", "period_month", "period_year",
			"issue_date", "due_date", "total_amount", "status", "penalty_stage", "created_at", "updated_at",
		}).AddRow(int64(42), "b-42", int64(2), int64(5), 6, 2025, now, now,
			int64(750000), domain.BillStatusPaid, domain.PenaltyStageNone, now, now))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/bills/42/pay", nil), map[string]string{"id": "42"})
	rec := httptest.NewRecorder()

	h.HandlePayBill(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBillingHandler_HandlePayBill(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	h := NewBillingHandler(db, postgres.NewStore(db), &fakeBillingService{}, &fakePenaltyService{})

	now := time.Now()
	mock.ExpectQuery("FROM bills WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "bill_no", "resident_id", "unit_id", "period_month", "period_year",
			"issue_date", "due_date", "total_amount", "status", "penalty_stage", "created_at", "updated_at",
		}).AddRow(int64(42), "b-42", int64(2), int64(5), 6, 2025, now, now,
			int64(750000), domain.BillStatusOverdue, domain.PenaltyStageSecondWarning, now, now))
	mock.ExpectExec("UPDATE bills SET status").
		WithArgs(domain.BillStatusPaid, sqlmock.AnyArg(), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/api/bills/42/pay", nil), map[string]string{"id": "42"})
	rec := httptest.NewRecorder()

	h.HandlePayBill(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
