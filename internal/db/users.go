package db

import (
	"context"
	"errors"
	"fmt"

	"dayplanner/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, first_name, last_name,
	timezone, session_version, created_at, updated_at`

// CreateUser inserts a new user. Duplicate usernames and emails are reported
// as ErrDuplicateUsername and ErrDuplicateEmail.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := db.timestamp()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Timezone,
		user.SessionVersion,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error creating user: %w", translateUniqueViolation(err))
	}
	return nil
}

// GetUserByID retrieves a user by its ID
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return collectOneUser(rows)
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return collectOneUser(rows)
}

// UsernameTaken reports whether a user other than except owns username.
func (db *DB) UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error) {
	var taken bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)`,
		username, except.String(),
	).Scan(&taken)
	return taken, err
}

// EmailTaken reports whether a user other than except owns email.
func (db *DB) EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error) {
	var taken bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, except.String(),
	).Scan(&taken)
	return taken, err
}

// UpdateUserProfile updates the profile columns of a user
func (db *DB) UpdateUserProfile(ctx context.Context, id uuid.UUID, p models.ProfileUpdate) (*models.User, error) {
	rows, err := db.Query(ctx, `
		UPDATE users
		SET username = $1, email = $2, first_name = $3, last_name = $4,
			timezone = $5, updated_at = $6
		WHERE id = $7
		RETURNING `+userColumns,
		p.Username, p.Email, p.FirstName, p.LastName, p.Timezone, db.timestamp(), id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	user, err := collectOneUser(rows)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, err
}

// UpdatePassword stores a new password hash and bumps the session version,
// which invalidates every session issued before the change.
func (db *DB) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error) {
	rows, err := db.Query(ctx, `
		UPDATE users
		SET password_hash = $1, session_version = session_version + 1, updated_at = $2
		WHERE id = $3
		RETURNING `+userColumns,
		passwordHash, db.timestamp(), id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("error updating password: %w", err)
	}
	return collectOneUser(rows)
}

// DeleteUser removes a user. Their tasks go with them (ON DELETE CASCADE).
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectOneUser(rows pgx.Rows) (*models.User, error) {
	user, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.Timezone,
			&u.SessionVersion,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
		return u, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return &user, nil
}
