package utils

import "time"

// DaysInMonth returns the number of days in a given month.
func DaysInMonth(year, month int) int {
	if month == 2 {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	// All other months have 31 days
	return 31
}

// PreviousPeriod returns the calendar month before (month, year).
func PreviousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// PeriodBounds returns the first day of (month, year) and the first day
// of the following month, both at midnight UTC. Useful as a half-open
// [start, end) range for period queries.
func PeriodBounds(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// DaysRemainingInMonth counts the days from t through the last day of
// t's month, inclusive of t itself.
func DaysRemainingInMonth(t time.Time) int {
	return DaysInMonth(t.Year(), int(t.Month())) - t.Day() + 1
}
