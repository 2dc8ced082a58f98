package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email is registered to another user.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateSlot is returned when a second task is inserted for an
	// occupied (user, date, hour).
	ErrDuplicateSlot = errors.New("task slot already exists")
)

const uniqueViolation = "23505"

// translateUniqueViolation maps a unique-constraint failure to the
// matching sentinel error. Other errors are returned as is.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	case "tasks_user_date_hour_key":
		return ErrDuplicateSlot
	}
	return err
}
