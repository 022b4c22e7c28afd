package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
)

func TestStageFor(t *testing.T) {
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		now   time.Time
		stage int
	}{
		{"before due date", due.AddDate(0, 0, -1), domain.PenaltyStageNone},
		{"on due date", due, domain.PenaltyStageNone},
		{"2 days late", due.AddDate(0, 0, 2), domain.PenaltyStageNone},
		{"exactly 3 days late", due.AddDate(0, 0, 3), domain.PenaltyStageNone},
		{"just past 3 days", due.AddDate(0, 0, 3).Add(time.Hour), domain.PenaltyStageGraceExceeded},
		{"4 days late", due.AddDate(0, 0, 4), domain.PenaltyStageGraceExceeded},
		{"exactly 6 days late", due.AddDate(0, 0, 6), domain.PenaltyStageGraceExceeded},
		{"7 days late", due.AddDate(0, 0, 7), domain.PenaltyStageSecondWarning},
		{"exactly 9 days late", due.AddDate(0, 0, 9), domain.PenaltyStageSecondWarning},
		{"10 days late", due.AddDate(0, 0, 10), domain.PenaltyStageSuspended},
		{"months late", due.AddDate(0, 3, 0), domain.PenaltyStageSuspended},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.stage, StageFor(tt.now, due))
		})
	}
}

func TestLateFeeLabel(t *testing.T) {
	assert.Equal(t, "Late Fee (Stage 1)", LateFeeLabel(1))
	assert.Equal(t, "Late Fee (Stage 2)", LateFeeLabel(2))
}
