// Package calendar lays out month grids and hour labels for the planner.
package calendar

import (
	"fmt"
	"time"
)

// Weeks returns the days of month as rows of seven, weeks starting on
// Sunday. Cells outside the month are 0.
func Weeks(year int, month time.Month) [][7]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := DaysIn(year, month)
	offset := int(first.Weekday()) // Sunday == 0

	var weeks [][7]int
	var week [7]int
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// DaysIn returns the number of days in month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Prev returns the month before (year, month).
func Prev(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Next returns the month after (year, month).
func Next(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// ValidMonth reports whether m is 1..12.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

// ValidDate reports whether year-month-day names a real calendar day.
func ValidDate(year, month, day int) bool {
	if year < 1 || year > 9999 || !ValidMonth(month) || day < 1 {
		return false
	}
	return day <= DaysIn(year, time.Month(month))
}

// HourLabel renders a slot hour on a 12-hour clock, e.g. "4:00 AM".
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12:00 AM"
	case hour < 12:
		return fmt.Sprintf("%d:00 AM", hour)
	case hour == 12:
		return "12:00 PM"
	default:
		return fmt.Sprintf("%d:00 PM", hour-12)
	}
}
