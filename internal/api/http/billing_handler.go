package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/logger"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository/postgres"
	"github.com/Haianh25/quanlychungcu-sub001/internal/service"
)

// BillingHandler exposes the engine trigger endpoints and the bill read
// surface over HTTP.
type BillingHandler struct {
	db      *sql.DB
	store   *postgres.Store
	billing service.BillingService
	penalty service.PenaltyService
}

func NewBillingHandler(db *sql.DB, store *postgres.Store, billing service.BillingService, penalty service.PenaltyService) *BillingHandler {
	return &BillingHandler{
		db:      db,
		store:   store,
		billing: billing,
		penalty: penalty,
	}
}

type generateRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

type generateResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// HandleGenerate triggers bill generation for a period.
// POST /api/billing/generate
func (h *BillingHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	result, err := h.billing.GenerateForPeriod(r.Context(), req.Month, req.Year)
	if err != nil {
		logger.Error("Bill generation via API failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, generateResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, Count: result.Generated})
}

// HandleEscalate triggers a penalty escalation run.
// POST /api/billing/escalate
func (h *BillingHandler) HandleEscalate(w http.ResponseWriter, r *http.Request) {
	result, err := h.penalty.RunEscalation(r.Context())
	if err != nil {
		logger.Error("Penalty escalation via API failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type moveInRequest struct {
	ResidentID int64 `json:"resident_id"`
	UnitID     int64 `json:"unit_id"`
}

// HandleMoveIn records an occupancy assignment and prorates the first
// bill in the same transaction: if proration fails, the assignment
// rolls back with it.
// POST /api/occupancies
func (h *BillingHandler) HandleMoveIn(w http.ResponseWriter, r *http.Request) {
	var req moveInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.ResidentID <= 0 || req.UnitID <= 0 {
		writeError(w, http.StatusBadRequest, "resident_id and unit_id are required")
		return
	}

	ctx := r.Context()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	occupancy := postgres.NewOccupancyRepository(tx)
	if err := occupancy.CreateAssignment(ctx, req.UnitID, req.ResidentID, time.Now()); err != nil {
		logger.Error("Failed to create occupancy assignment", "unit_id", req.UnitID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	if err := h.billing.GenerateMoveIn(ctx, tx, req.ResidentID, req.UnitID); err != nil {
		logger.Error("Move-in proration failed, assignment rolled back", "unit_id", req.UnitID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to prorate move-in bill")
		return
	}

	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit assignment")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleListBills lists a resident's bills, optionally filtered by status.
// GET /api/residents/{id}/bills?status=UNPAID,OVERDUE
func (h *BillingHandler) HandleListBills(w http.ResponseWriter, r *http.Request) {
	residentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resident id")
		return
	}

	var statuses []domain.BillStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, domain.BillStatus(s))
			}
		}
	}

	bills, err := h.store.BillRepository.ListByResident(r.Context(), residentID, statuses)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

type billDetail struct {
	Bill  *domain.Bill      `json:"bill"`
	Items []domain.BillItem `json:"items"`
}

// HandleGetBill returns a bill with its line items.
// GET /api/bills/{id}
func (h *BillingHandler) HandleGetBill(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	bill, err := h.store.BillRepository.GetByID(r.Context(), billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load bill")
		return
	}
	items, err := h.store.BillRepository.GetItems(r.Context(), billID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load bill items")
		return
	}

	writeJSON(w, http.StatusOK, billDetail{Bill: bill, Items: items})
}

// HandlePayBill confirms payment of a bill. Payment clears the status;
// penalty_stage is left as a historical record.
// POST /api/bills/{id}/pay
func (h *BillingHandler) HandlePayBill(w http.ResponseWriter, r *http.Request) {
	billID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	bill, err := h.store.BillRepository.GetByID(r.Context(), billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load bill")
		return
	}
	if !bill.IsPayable() {
		writeError(w, http.StatusConflict, "bill is not payable")
		return
	}

	if err := h.store.BillRepository.MarkPaid(r.Context(), billID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mark bill paid")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[key], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
