package billing

import (
	"fmt"
	"time"

	"github.com/Haianh25/quanlychungcu-sub001/internal/domain"
)

// Days past the due date after which each penalty stage applies. All
// thresholds are measured from the same due date, not from the previous
// stage's transition, so a bill that misses scheduler runs still lands
// in the correct stage from pure elapsed time.
const (
	Stage1AfterDays = 3
	Stage2AfterDays = 6
	Stage3AfterDays = 9
)

// StageFor returns the penalty stage a bill with the given due date
// should be in at the given instant.
func StageFor(now, due time.Time) int {
	switch {
	case now.After(due.AddDate(0, 0, Stage3AfterDays)):
		return domain.PenaltyStageSuspended
	case now.After(due.AddDate(0, 0, Stage2AfterDays)):
		return domain.PenaltyStageSecondWarning
	case now.After(due.AddDate(0, 0, Stage1AfterDays)):
		return domain.PenaltyStageGraceExceeded
	default:
		return domain.PenaltyStageNone
	}
}

// LateFeeLabel names the bill item inserted when a stage applies its
// flat late fee. Stage 3 adds no fee; its cost is the suspension.
func LateFeeLabel(stage int) string {
	return fmt.Sprintf("Late Fee (Stage %d)", stage)
}
