package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"dayplanner/internal/db"
	"dayplanner/internal/db/models"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	timezone, session_version, created_at, updated_at`

// CreateUser inserts a new user.
func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := d.timestamp()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := d.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Timezone,
		user.SessionVersion,
		now.UnixMicro(),
		now.UnixMicro(),
	)
	if err != nil {
		if dup := translateUniqueViolation(err); dup != err {
			return dup
		}
		return &Error{Op: "CreateUser", Err: err}
	}
	return nil
}

func (d *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := d.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	return d.oneUser("GetUserByID", row)
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := d.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return d.oneUser("GetUserByUsername", row)
}

func (d *DB) UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error) {
	var taken bool
	err := d.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = ? AND id <> ?)`,
		username, except.String(),
	).Scan(&taken)
	if err != nil {
		return false, &Error{Op: "UsernameTaken", Err: err}
	}
	return taken, nil
}

func (d *DB) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var taken bool
	err := d.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? AND id <> ?)`,
		email, except.String(),
	).Scan(&taken)
	if err != nil {
		return false, &Error{Op: "EmailTaken", Err: err}
	}
	return taken, nil
}

func (d *DB) UpdateUserProfile(ctx context.Context, id uuid.UUID, p models.ProfileUpdate) (*models.User, error) {
	row := d.QueryRowContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?,
			timezone = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		p.Username, p.Email, p.FirstName, p.LastName, p.Timezone,
		d.timestamp().UnixMicro(), id.String(),
	)
	return d.oneUser("UpdateUserProfile", row)
}

// UpdatePassword stores a new hash and bumps the session version.
func (d *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error) {
	row := d.QueryRowContext(ctx, `
		UPDATE users
		SET password_hash = ?, session_version = session_version + 1, updated_at = ?
		WHERE id = ?
		RETURNING `+userColumns,
		passwordHash, d.timestamp().UnixMicro(), id.String(),
	)
	return d.oneUser("UpdatePassword", row)
}

// DeleteUser removes a user; the foreign key cascades to their tasks.
func (d *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := d.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return &Error{Op: "DeleteUser", UserID: id.String(), Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &Error{Op: "DeleteUser", UserID: id.String(), Err: err}
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (d *DB) oneUser(op string, row *sql.Row) (*models.User, error) {
	var (
		u                    models.User
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Timezone,
		&u.SessionVersion,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		if dup := translateUniqueViolation(err); dup != err {
			return nil, dup
		}
		return nil, &Error{Op: op, Err: err}
	}
	u.CreatedAt = fromMicros(createdAt)
	u.UpdatedAt = fromMicros(updatedAt)
	return &u, nil
}
