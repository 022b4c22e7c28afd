package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository can be
// scoped to the caller's transaction when a run must be all-or-nothing.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	CreateItem(ctx context.Context, item *domain.BillItem) error
	GetByID(ctx context.Context, id int64) (*domain.Bill, error)
	GetItems(ctx context.Context, billID int64) ([]domain.BillItem, error)
	ExistsForUnitPeriod(ctx context.Context, unitID int64, month, year int) (bool, error)
	ExistsForResidentPeriod(ctx context.Context, residentID int64, month, year int) (bool, error)
	ListByResident(ctx context.Context, residentID int64, statuses []domain.BillStatus) ([]domain.Bill, error)
	ListEscalatable(ctx context.Context, dueBefore time.Time) ([]domain.Bill, error)
	AdvanceStage(ctx context.Context, billID int64, stage int, addAmount int64, status domain.BillStatus) error
	MarkPaid(ctx context.Context, billID int64) error
}

type FeeScheduleRepository interface {
	Snapshot(ctx context.Context) (domain.FeeTable, error)
}

type OccupancyRepository interface {
	ListOccupiedUnits(ctx context.Context) ([]domain.OccupiedUnit, error)
	UnitArea(ctx context.Context, unitID int64) (float64, error)
	CreateAssignment(ctx context.Context, unitID, residentID int64, movedInOn time.Time) error
}

type VehicleRepository interface {
	ActiveCardCounts(ctx context.Context, unitID int64) (map[domain.VehicleType]int, error)
	ListUnbilledChargeEvents(ctx context.Context, unitID int64, from, to time.Time) ([]domain.VehicleChargeEvent, error)
	ListUnproratedCards(ctx context.Context, unitID int64, from, to time.Time) ([]domain.VehicleCard, error)
	MarkEventsBilled(ctx context.Context, ids []int64, billID int64) error
	MarkCardsProrated(ctx context.Context, ids []int64, billID int64) error
}

type BookingRepository interface {
	ListUnbilled(ctx context.Context, unitID int64, from, to time.Time) ([]domain.BookingCharge, error)
	MarkBilled(ctx context.Context, ids []int64, billID int64) error
}

type ResidentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resident, error)
	ListAdmins(ctx context.Context) ([]domain.Resident, error)
	Suspend(ctx context.Context, id int64) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, residentID int64, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, residentID int64) error
}
