package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "username",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"},
			want: ErrDuplicateUsername,
		},
		{
			name: "email",
			err:  fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}),
			want: ErrDuplicateEmail,
		},
		{
			name: "task slot",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "tasks_user_date_hour_key"},
			want: ErrDuplicateSlot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateUniqueViolation(tt.err), tt.want)
		})
	}
}

func TestTranslateUniqueViolation_PassesThrough(t *testing.T) {
	other := &pgconn.PgError{Code: "23503", ConstraintName: "tasks_user_id_fkey"}
	assert.Same(t, other, translateUniqueViolation(other))

	plain := errors.New("boom")
	assert.Equal(t, plain, translateUniqueViolation(plain))

	unknown := &pgconn.PgError{Code: "23505", ConstraintName: "something_else"}
	assert.Equal(t, error(unknown), translateUniqueViolation(unknown))
}

func TestMigrationFiles(t *testing.T) {
	files, err := migrationFiles()
	assert.NoError(t, err)
	if assert.NotEmpty(t, files) {
		assert.Equal(t, 1, files[0].version)
		assert.Contains(t, files[0].sql, "tasks_user_date_hour_key")
	}
}
