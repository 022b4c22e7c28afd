package domain

import "time"

type BillStatus string

const (
	BillStatusUnpaid  BillStatus = "UNPAID"
	BillStatusOverdue BillStatus = "OVERDUE"
	BillStatusPaid    BillStatus = "PAID"
)

// Penalty stages an unpaid bill moves through. The stage only ever
// increases; confirming payment resets status, not stage.
const (
	PenaltyStageNone          = 0
	PenaltyStageGraceExceeded = 1
	PenaltyStageSecondWarning = 2
	PenaltyStageSuspended     = 3
)

// Bill is one resident's billing obligation for one unit and one issue
// period. At most one bill exists per (unit, period_month, period_year).
type Bill struct {
	ID           int64      `json:"id"`
	BillNo       string     `json:"bill_no"`
	ResidentID   int64      `json:"resident_id"`
	UnitID       int64      `json:"unit_id"`
	PeriodMonth  int        `json:"period_month"`
	PeriodYear   int        `json:"period_year"`
	IssueDate    time.Time  `json:"issue_date"`
	DueDate      time.Time  `json:"due_date"`
	TotalAmount  int64      `json:"total_amount"` // VND
	Status       BillStatus `json:"status"`
	PenaltyStage int        `json:"penalty_stage"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BillItem is an immutable line contributing to a bill's total. Every
// mutation of Bill.TotalAmount is paired with a newly inserted item, so
// the sum of item totals equals the bill total at every point in the
// bill's life.
type BillItem struct {
	ID        int64     `json:"id"`
	BillID    int64     `json:"bill_id"`
	Label     string    `json:"label"`
	UnitPrice int64     `json:"unit_price"` // VND
	Quantity  int32     `json:"quantity"`
	Total     int64     `json:"total"` // VND
	CreatedAt time.Time `json:"created_at"`
}

// IsPayable reports whether the bill still awaits payment.
func (b *Bill) IsPayable() bool {
	return b.Status == BillStatusUnpaid || b.Status == BillStatusOverdue
}
