package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dayplanner/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskColumns = `id, user_id, task_date, hour, task_text, created_at, updated_at`

// EnsureDaySlots returns the user's tasks for every hour of date, ordered by
// hour. Missing slots are created with empty text; slots that already exist
// (including ones inserted concurrently by another request) are left alone
// and re-read.
func (db *DB) EnsureDaySlots(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.Task, error) {
	day := models.Day(date).Format(models.DateLayout)
	now := db.timestamp()

	var tasks []models.Task
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, hour := range models.Hours() {
			batch.Queue(`
				INSERT INTO tasks (id, user_id, task_date, hour, task_text, created_at, updated_at)
				VALUES ($1, $2, $3, $4, '', $5, $5)
				ON CONFLICT (user_id, task_date, hour) DO NOTHING`,
				uuid.New().String(), userID.String(), day, hour, now,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("error creating day slots: %w", err)
		}

		rows, err := tx.Query(ctx, `
			SELECT `+taskColumns+`
			FROM tasks
			WHERE user_id = $1 AND task_date = $2
			ORDER BY hour ASC`,
			userID.String(), day,
		)
		if err != nil {
			return fmt.Errorf("error reading day slots: %w", err)
		}
		tasks, err = pgx.CollectRows(rows, scanTask)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(tasks) != models.SlotsPerDay {
		return nil, fmt.Errorf("day %s has %d slots, want %d", day, len(tasks), models.SlotsPerDay)
	}
	return tasks, nil
}

// UpdateTaskText replaces the text of a task owned by userID. It returns
// ErrNotFound when the task does not exist or has another owner.
func (db *DB) UpdateTaskText(ctx context.Context, taskID, userID uuid.UUID, text string) (*models.Task, error) {
	rows, err := db.Query(ctx, `
		UPDATE tasks
		SET task_text = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4
		RETURNING `+taskColumns,
		text, db.timestamp(), taskID.String(), userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return collectOneTask(rows)
}

// GetTask retrieves a task by ID, scoped to its owner.
func (db *DB) GetTask(ctx context.Context, taskID, userID uuid.UUID) (*models.Task, error) {
	rows, err := db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2`,
		taskID.String(), userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("error getting task: %w", err)
	}
	return collectOneTask(rows)
}

// CountTasks returns how many task rows a user owns.
func (db *DB) CountTasks(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting tasks: %w", err)
	}
	return n, nil
}

func collectOneTask(rows pgx.Rows) (*models.Task, error) {
	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func scanTask(row pgx.CollectableRow) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Date,
		&task.Hour,
		&task.Text,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	return task, err
}
