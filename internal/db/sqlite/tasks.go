package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dayplanner/internal/db"
	"dayplanner/internal/db/models"

	"github.com/google/uuid"
)

const taskColumns = `id, user_id, task_date, hour, task_text, created_at, updated_at`

// EnsureDaySlots returns the user's 19 tasks for date, creating the missing
// ones with empty text. Existing rows win over the insert.
func (d *DB) EnsureDaySlots(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Task, error) {
	day := models.Day(date).Format(models.DateLayout)
	now := d.timestamp().UnixMicro()

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return nil, &Error{Op: "EnsureDaySlots", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, '', ?, ?)
		ON CONFLICT (user_id, task_date, hour) DO NOTHING`)
	if err != nil {
		return nil, &Error{Op: "EnsureDaySlots", Err: err}
	}
	defer stmt.Close()

	for _, hour := range models.Hours() {
		if _, err := stmt.ExecContext(ctx, uuid.New().String(), userID.String(), day, hour, now, now); err != nil {
			return nil, &Error{Op: "EnsureDaySlots", Err: err}
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = ? AND task_date = ?
		ORDER BY hour ASC`,
		userID.String(), day,
	)
	if err != nil {
		return nil, &Error{Op: "EnsureDaySlots", Err: err}
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, models.SlotsPerDay)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, &Error{Op: "EnsureDaySlots", Err: err}
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "EnsureDaySlots", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &Error{Op: "EnsureDaySlots", Err: err}
	}
	if len(tasks) != models.SlotsPerDay {
		return nil, fmt.Errorf("day %s has %d slots, want %d", day, len(tasks), models.SlotsPerDay)
	}
	return tasks, nil
}

// UpdateTaskText replaces the text of a task owned by userID, or returns
// db.ErrNotFound.
func (d *DB) UpdateTaskText(ctx context.Context, taskID, userID uuid.UUID, text string) (*models.Task, error) {
	row := d.QueryRowContext(ctx, `
		UPDATE tasks
		SET task_text = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING `+taskColumns,
		text, d.timestamp().UnixMicro(), taskID.String(), userID.String(),
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "UpdateTaskText", TaskID: taskID.String(), Err: err}
	}
	return task, nil
}

// GetTask retrieves a task by ID, scoped to its owner.
func (d *DB) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	row := d.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		taskID.String(), userID.String(),
	)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, &Error{Op: "GetTask", TaskID: taskID.String(), Err: err}
	}
	return task, nil
}

// CountTasks returns how many task rows a user owns.
func (d *DB) CountTasks(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, userID.String()).Scan(&n)
	if err != nil {
		return 0, &Error{Op: "CountTasks", Err: err}
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		task                 models.Task
		date                 string
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&date,
		&task.Hour,
		&task.Text,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Date, err = time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid task_date %q: %w", date, err)
	}
	task.CreatedAt = fromMicros(createdAt)
	task.UpdatedAt = fromMicros(updatedAt)
	return &task, nil
}
