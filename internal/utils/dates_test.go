package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2025, 1))
	assert.Equal(t, 28, DaysInMonth(2025, 2))
	assert.Equal(t, 29, DaysInMonth(2024, 2)) // leap year
	assert.Equal(t, 28, DaysInMonth(2100, 2)) // century, not leap
	assert.Equal(t, 29, DaysInMonth(2000, 2)) // 400-year rule
	assert.Equal(t, 30, DaysInMonth(2025, 4))
	assert.Equal(t, 30, DaysInMonth(2025, 11))
	assert.Equal(t, 31, DaysInMonth(2025, 12))
}

func TestPreviousPeriod(t *testing.T) {
	m, y := PreviousPeriod(3, 2025)
	assert.Equal(t, 2, m)
	assert.Equal(t, 2025, y)

	m, y = PreviousPeriod(1, 2025)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2024, y)
}

func TestPeriodBounds(t *testing.T) {
	start, end := PeriodBounds(2, 2025)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)

	start, end = PeriodBounds(12, 2025)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestDaysRemainingInMonth(t *testing.T) {
	assert.Equal(t, 30, DaysRemainingInMonth(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, DaysRemainingInMonth(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 17, DaysRemainingInMonth(time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
}
