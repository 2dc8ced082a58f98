package models

import (
	"time"

	"github.com/google/uuid"
)

// First and last hour slot of a planner day, inclusive.
const (
	FirstHour = 4
	LastHour  = 22
)

// SlotsPerDay is the number of hourly slots on every day.
const SlotsPerDay = LastHour - FirstHour + 1

// DateLayout is the storage and URL form of a task date.
const DateLayout = "2006-01-02"

// Task is one hourly slot of one user's day.
type Task struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Date      time.Time `db:"task_date"`
	Hour      int       `db:"hour"`
	Text      string    `db:"task_text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Hours returns every valid slot hour in ascending order.
func Hours() []int {
	hours := make([]int, 0, SlotsPerDay)
	for h := FirstHour; h <= LastHour; h++ {
		hours = append(hours, h)
	}
	return hours
}

// ValidHour reports whether h is a slot hour.
func ValidHour(h int) bool {
	return h >= FirstHour && h <= LastHour
}

// Day truncates t to a calendar date at midnight UTC, keeping the
// year, month and day as seen in t's own location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
