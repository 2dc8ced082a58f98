package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeeks(t *testing.T) {
	// September 2024 starts on a Sunday and has 30 days.
	weeks := Weeks(2024, time.September)
	assert.Len(t, weeks, 5)
	assert.Equal(t, [7]int{1, 2, 3, 4, 5, 6, 7}, weeks[0])
	assert.Equal(t, [7]int{29, 30, 0, 0, 0, 0, 0}, weeks[4])

	// February 2024 starts on a Thursday, leap year.
	weeks = Weeks(2024, time.February)
	assert.Equal(t, [7]int{0, 0, 0, 0, 1, 2, 3}, weeks[0])
	assert.Equal(t, [7]int{25, 26, 27, 28, 29, 0, 0}, weeks[len(weeks)-1])

	// February 2026 starts on a Sunday: exactly four full weeks.
	weeks = Weeks(2026, time.February)
	assert.Len(t, weeks, 4)
	assert.Equal(t, [7]int{22, 23, 24, 25, 26, 27, 28}, weeks[3])
}

func TestWeeks_EveryDayOnce(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		seen := map[int]bool{}
		for _, week := range Weeks(2025, month) {
			for _, d := range week {
				if d == 0 {
					continue
				}
				assert.False(t, seen[d], "%s day %d repeated", month, d)
				seen[d] = true
			}
		}
		assert.Len(t, seen, DaysIn(2025, month), month.String())
	}
}

func TestPrevNext(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantYear  int
		wantMonth time.Month
		next      bool
	}{
		{"prev wraps year", 2024, time.January, 2023, time.December, false},
		{"prev same year", 2024, time.March, 2024, time.February, false},
		{"next wraps year", 2024, time.December, 2025, time.January, true},
		{"next same year", 2024, time.June, 2024, time.July, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var y int
			var m time.Month
			if tt.next {
				y, m = Next(tt.year, tt.month)
			} else {
				y, m = Prev(tt.year, tt.month)
			}
			assert.Equal(t, tt.wantYear, y)
			assert.Equal(t, tt.wantMonth, m)
		})
	}
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate(2024, 2, 29))
	assert.False(t, ValidDate(2023, 2, 29))
	assert.False(t, ValidDate(2024, 4, 31))
	assert.False(t, ValidDate(2024, 13, 1))
	assert.False(t, ValidDate(2024, 0, 1))
	assert.False(t, ValidDate(2024, 1, 0))
	assert.False(t, ValidDate(0, 1, 1))
}

func TestHourLabel(t *testing.T) {
	assert.Equal(t, "4:00 AM", HourLabel(4))
	assert.Equal(t, "11:00 AM", HourLabel(11))
	assert.Equal(t, "12:00 PM", HourLabel(12))
	assert.Equal(t, "1:00 PM", HourLabel(13))
	assert.Equal(t, "10:00 PM", HourLabel(22))
	assert.Equal(t, "12:00 AM", HourLabel(0))
}
