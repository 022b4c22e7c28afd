package service

import (
	"context"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
	"github.com/Haianh25/quanlychungcu-sub001/internal/repository"
)

// GenerateResult reports the outcome of one bill generation run.
type GenerateResult struct {
	Month     int   `json:"month"`
	Year      int   `json:"year"`
	Generated int   `json:"generated"`
	Skipped   int   `json:"skipped"`
	Total     int64 `json:"total_amount"`
}

// EscalationResult reports the outcome of one penalty escalation run.
type EscalationResult struct {
	Scanned     int `json:"scanned"`
	Advanced    int `json:"advanced"`
	StageCounts [4]int
	Suspended   int `json:"suspended"`
}

// BillingService owns monthly bill materialization and mid-month
// move-in proration.
type BillingService interface {
	// GenerateForPeriod creates one bill per occupied unit for the
	// period, skipping units already billed. The whole run is one
	// transaction: any failure rolls everything back and the run is
	// safely retryable.
	GenerateForPeriod(ctx context.Context, month, year int) (*GenerateResult, error)

	// GenerateMoveIn bills the remainder of the current month for a
	// freshly assigned unit, inside the caller's transaction. A no-op
	// when the resident already has a bill this month.
	GenerateMoveIn(ctx context.Context, tx repository.DBTX, residentID, unitID int64) error
}

// PenaltyService escalates unpaid bills through the staged penalty
// state machine.
type PenaltyService interface {
	RunEscalation(ctx context.Context) (*EscalationResult, error)
}

// BillEmailSummary carries the fields of the invoice summary email.
type BillEmailSummary struct {
	BillNo      string
	PeriodMonth int
	PeriodYear  int
	TotalAmount int64
	DueDate     time.Time
}

// EmailService delivers best-effort email. Failures are logged by
// callers and never abort bill persistence.
type EmailService interface {
	SendBillEmail(ctx context.Context, toEmail, residentName string, summary BillEmailSummary) error
}

// NotificationService is the resident inbox surface.
type NotificationService interface {
	GetNotifications(ctx context.Context, residentID int64, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, residentID, notificationID int64) error
}
