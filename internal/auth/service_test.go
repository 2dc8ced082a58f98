package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dayplanner/internal/db"
	"dayplanner/internal/db/models"
	"dayplanner/internal/db/sqlite"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewService(store, NewPasswordHasherWithCost(bcrypt.MinCost)), store
}

func register(t *testing.T, svc *Service, username, email, password string) *models.User {
	t.Helper()

	user, err := svc.CreateAccount(context.Background(), RegisterInput{
		Username:  username,
		Email:     email,
		Password1: password,
		Password2: password,
	})
	require.NoError(t, err)
	return user
}

func TestCreateAccount(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user := register(t, svc, "alice", "alice@example.com", "secret1")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "UTC", user.Timezone)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestCreateAccount_Rejections(t *testing.T) {
	svc, _ := setupService(t)
	register(t, svc, "alice", "alice@example.com", "secret1")

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{
			name: "missing username",
			in:   RegisterInput{Email: "x@example.com", Password1: "secret1", Password2: "secret1"},
			want: ErrBadRequest,
		},
		{
			name: "bad email",
			in:   RegisterInput{Username: "bob", Email: "not-an-email", Password1: "secret1", Password2: "secret1"},
			want: ErrBadRequest,
		},
		{
			name: "bad username characters",
			in:   RegisterInput{Username: "bob smith", Email: "bob@example.com", Password1: "secret1", Password2: "secret1"},
			want: ErrBadRequest,
		},
		{
			name: "password mismatch",
			in:   RegisterInput{Username: "bob", Email: "bob@example.com", Password1: "secret1", Password2: "secret2"},
			want: ErrPasswordMismatch,
		},
		{
			name: "short password",
			in:   RegisterInput{Username: "bob", Email: "bob@example.com", Password1: "abc", Password2: "abc"},
			want: ErrWeakPassword,
		},
		{
			name: "duplicate username",
			in:   RegisterInput{Username: "alice", Email: "other@example.com", Password1: "secret1", Password2: "secret1"},
			want: ErrDuplicateUsername,
		},
		{
			name: "duplicate email",
			in:   RegisterInput{Username: "alice2", Email: "alice@example.com", Password1: "secret1", Password2: "secret1"},
			want: ErrDuplicateEmail,
		},
		{
			name: "mismatch reported before duplicate",
			in:   RegisterInput{Username: "alice", Email: "alice@example.com", Password1: "secret1", Password2: "nope"},
			want: ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticate_Invalid(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	register(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	user := register(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.ChangePassword(ctx, user, "secret1", "newpass1", "newpass2")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = svc.ChangePassword(ctx, user, "secret1", "abc", "abc")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = svc.ChangePassword(ctx, user, "wrong", "newpass1", "newpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	updated, err := svc.ChangePassword(ctx, user, "secret1", "newpass1", "newpass1")
	require.NoError(t, err)
	assert.Equal(t, user.SessionVersion+1, updated.SessionVersion)

	_, err = svc.Authenticate(ctx, "alice", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "alice", "newpass1")
	assert.NoError(t, err)
}

func TestSetPassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	user := register(t, svc, "alice", "alice@example.com", "secret1")

	_, err := svc.SetPassword(ctx, user.ID, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	updated, err := svc.SetPassword(ctx, user.ID, "another1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.SessionVersion-user.SessionVersion)
	assert.True(t, svc.CheckPassword(updated, "another1"))
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	alice := register(t, svc, "alice", "alice@example.com", "secret1")
	register(t, svc, "bob", "bob@example.com", "secret1")

	updated, err := svc.UpdateProfile(ctx, alice.ID, ProfileInput{
		Username:  "alice",
		Email:     "alice@example.org",
		FirstName: " Alice ",
		Timezone:  "Europe/Berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", updated.Email)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "Europe/Berlin", updated.Location().String())

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileInput{Username: "bob", Email: "alice@example.org"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileInput{Username: "alice", Email: "bob@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileInput{Username: "alice", Email: "alice@example.org", Timezone: "Mars/Olympus"})
	assert.ErrorIs(t, err, ErrBadRequest)

	cleared, err := svc.UpdateProfile(ctx, alice.ID, ProfileInput{Username: "alice", Email: "alice@example.org"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", cleared.Timezone)
}

func TestDeleteAccount(t *testing.T) {
	svc, store := setupService(t)
	ctx := context.Background()
	user := register(t, svc, "alice", "alice@example.com", "secret1")

	_, err := store.EnsureDaySlots(ctx, user.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, user.ID))
	n, err := store.CountTasks(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, user.ID), db.ErrNotFound)
}
