// Package planner renders the month and day views and saves slot text on
// behalf of an authenticated user.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dayplanner/internal/calendar"
	"dayplanner/internal/db"
	"dayplanner/internal/db/models"

	"github.com/google/uuid"
)

// ErrInvalidDate is returned for a year/month/day that is not on the
// calendar.
var ErrInvalidDate = errors.New("invalid date")

// TaskStore is the slot storage used by the planner.
type TaskStore interface {
	EnsureDaySlots(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Task, error)
	UpdateTaskText(ctx context.Context, taskID, userID uuid.UUID, text string) (*models.Task, error)
}

// Identity is the user a request acts for.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Location *time.Location
}

// IdentityOf builds the identity of an authenticated user.
func IdentityOf(user *models.User) *Identity {
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Location: user.Location(),
	}
}

func (id *Identity) location() *time.Location {
	if id == nil || id.Location == nil {
		return time.UTC
	}
	return id.Location
}

// MonthView is the calendar page for one month.
type MonthView struct {
	Year      int
	Month     time.Month
	MonthName string
	// Weeks holds day numbers Sunday first; 0 pads days outside the month.
	Weeks     [][7]int
	PrevYear  int
	PrevMonth time.Month
	NextYear  int
	NextMonth time.Month
	// Today is the current date in the user's time zone.
	Today time.Time
}

// IsToday reports whether day of this month is today.
func (v *MonthView) IsToday(day int) bool {
	return day != 0 &&
		v.Today.Year() == v.Year &&
		v.Today.Month() == v.Month &&
		v.Today.Day() == day
}

// Slot is one hour row of the day view.
type Slot struct {
	Task  models.Task
	Label string
}

// DayView is the detail page for one date.
type DayView struct {
	Date      time.Time
	DateLabel string
	Slots     []Slot
}

// Service implements the planner operations.
type Service struct {
	tasks TaskStore
	now   func() time.Time
}

// NewService creates a Service over tasks.
func NewService(tasks TaskStore) *Service {
	return &Service{tasks: tasks, now: time.Now}
}

// Today returns the current date in the identity's time zone.
func (s *Service) Today(id *Identity) time.Time {
	return s.now().In(id.location())
}

// RenderMonth lays out the calendar for year/month. Zero values select the
// current month. A nil identity gets no calendar.
func (s *Service) RenderMonth(id *Identity, year, month int) (*MonthView, error) {
	if id == nil {
		return nil, nil
	}
	today := s.Today(id)
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	if !calendar.ValidDate(year, month, 1) {
		return nil, ErrInvalidDate
	}

	m := time.Month(month)
	view := &MonthView{
		Year:      year,
		Month:     m,
		MonthName: m.String(),
		Weeks:     calendar.Weeks(year, m),
		Today:     today,
	}
	view.PrevYear, view.PrevMonth = calendar.Prev(year, m)
	view.NextYear, view.NextMonth = calendar.Next(year, m)
	return view, nil
}

// RenderDay returns the 19 hourly slots of the given date, creating the
// ones the user has not seen yet.
func (s *Service) RenderDay(ctx context.Context, id *Identity, year, month, day int) (*DayView, error) {
	if id == nil {
		return nil, db.ErrNotFound
	}
	if !calendar.ValidDate(year, month, day) {
		return nil, ErrInvalidDate
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	tasks, err := s.tasks.EnsureDaySlots(ctx, id.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("error loading day %s: %w", date.Format(models.DateLayout), err)
	}

	view := &DayView{
		Date:      date,
		DateLabel: date.Format("January 02, 2006"),
		Slots:     make([]Slot, 0, len(tasks)),
	}
	for _, task := range tasks {
		view.Slots = append(view.Slots, Slot{Task: task, Label: calendar.HourLabel(task.Hour)})
	}
	return view, nil
}

// SaveTask replaces the text of one of the identity's tasks. An id that
// does not parse is reported like a missing task.
func (s *Service) SaveTask(ctx context.Context, id *Identity, taskID, text string) (*models.Task, error) {
	if id == nil {
		return nil, db.ErrNotFound
	}
	tid, err := uuid.Parse(taskID)
	if err != nil {
		return nil, db.ErrNotFound
	}
	return s.tasks.UpdateTaskText(ctx, tid, id.UserID, text)
}
