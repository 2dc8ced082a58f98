package planner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dayplanner/internal/db"
	"dayplanner/internal/db/models"
	"dayplanner/internal/db/sqlite"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPlanner(t *testing.T) (*Service, *sqlite.DB, *Identity) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))

	return NewService(store), store, IdentityOf(user)
}

func TestRenderMonth(t *testing.T) {
	svc, _, id := setupPlanner(t)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }

	view, err := svc.RenderMonth(id, 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, "January", view.MonthName)
	assert.Equal(t, 2023, view.PrevYear)
	assert.Equal(t, time.December, view.PrevMonth)
	assert.Equal(t, 2024, view.NextYear)
	assert.Equal(t, time.February, view.NextMonth)
	assert.True(t, view.IsToday(15))
	assert.False(t, view.IsToday(16))
	assert.False(t, view.IsToday(0))

	view, err = svc.RenderMonth(id, 2024, 12)
	require.NoError(t, err)
	assert.Equal(t, 2025, view.NextYear)
	assert.Equal(t, time.January, view.NextMonth)
	assert.False(t, view.IsToday(15))
}

func TestRenderMonth_Defaults(t *testing.T) {
	svc, _, id := setupPlanner(t)
	// 23:30 UTC on Mar 31 is already Apr 1 in Tokyo.
	svc.now = func() time.Time { return time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC) }
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	id.Location = tokyo

	view, err := svc.RenderMonth(id, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, time.April, view.Month)
	assert.True(t, view.IsToday(1))
}

func TestRenderMonth_Anonymous(t *testing.T) {
	svc, _, _ := setupPlanner(t)

	view, err := svc.RenderMonth(nil, 2024, 1)
	assert.NoError(t, err)
	assert.Nil(t, view)
}

func TestRenderMonth_InvalidMonth(t *testing.T) {
	svc, _, id := setupPlanner(t)

	_, err := svc.RenderMonth(id, 2024, 13)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestRenderDay(t *testing.T) {
	svc, store, id := setupPlanner(t)
	ctx := context.Background()

	view, err := svc.RenderDay(ctx, id, 2024, 2, 29)
	require.NoError(t, err)
	assert.Equal(t, "February 29, 2024", view.DateLabel)
	require.Len(t, view.Slots, models.SlotsPerDay)
	assert.Equal(t, "4:00 AM", view.Slots[0].Label)
	assert.Equal(t, "12:00 PM", view.Slots[8].Label)
	assert.Equal(t, "10:00 PM", view.Slots[len(view.Slots)-1].Label)

	again, err := svc.RenderDay(ctx, id, 2024, 2, 29)
	require.NoError(t, err)
	for i := range view.Slots {
		assert.Equal(t, view.Slots[i].Task.ID, again.Slots[i].Task.ID)
	}

	n, err := store.CountTasks(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotsPerDay, n)
}

func TestRenderDay_NoIdentity(t *testing.T) {
	svc, _, _ := setupPlanner(t)

	_, err := svc.RenderDay(context.Background(), nil, 2024, 1, 1)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRenderDay_InvalidDate(t *testing.T) {
	svc, store, id := setupPlanner(t)
	ctx := context.Background()

	_, err := svc.RenderDay(ctx, id, 2024, 2, 30)
	assert.ErrorIs(t, err, ErrInvalidDate)

	n, err := store.CountTasks(ctx, id.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveTask(t *testing.T) {
	svc, store, id := setupPlanner(t)
	ctx := context.Background()

	view, err := svc.RenderDay(ctx, id, 2024, 6, 1)
	require.NoError(t, err)
	task := view.Slots[3].Task

	saved, err := svc.SaveTask(ctx, id, task.ID.String(), "standup")
	require.NoError(t, err)
	assert.Equal(t, "standup", saved.Text)

	got, err := store.GetTask(ctx, task.ID, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "standup", got.Text)

	_, err = svc.SaveTask(ctx, id, "not-a-uuid", "x")
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = svc.SaveTask(ctx, id, uuid.NewString(), "x")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestSaveTask_OtherUser(t *testing.T) {
	svc, store, id := setupPlanner(t)
	ctx := context.Background()

	view, err := svc.RenderDay(ctx, id, 2024, 6, 2)
	require.NoError(t, err)
	task := view.Slots[0].Task

	other := &models.User{Username: "mallory", Email: "mallory@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, other))

	_, err = svc.SaveTask(ctx, IdentityOf(other), task.ID.String(), "mine now")
	assert.ErrorIs(t, err, db.ErrNotFound)

	got, err := store.GetTask(ctx, task.ID, id.UserID)
	require.NoError(t, err)
	assert.Empty(t, got.Text)
}

type failingStore struct{ err error }

func (f failingStore) EnsureDaySlots(context.Context, uuid.UUID, time.Time) ([]models.Task, error) {
	return nil, f.err
}

func (f failingStore) UpdateTaskText(context.Context, uuid.UUID, uuid.UUID, string) (*models.Task, error) {
	return nil, f.err
}

func TestRenderDay_StoreError(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(failingStore{err: boom})

	_, err := svc.RenderDay(context.Background(), &Identity{UserID: uuid.New()}, 2024, 1, 1)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "2024-01-01")
}
