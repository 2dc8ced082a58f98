package models

import (
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `db:"id"`
	Username       string    `db:"username"`
	Email          string    `db:"email"`
	PasswordHash   string    `db:"password_hash"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Timezone       string    `db:"timezone"`
	SessionVersion int       `db:"session_version"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Location returns the user's time zone, falling back to UTC when the
// stored name cannot be loaded.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ProfileUpdate carries the mutable profile columns of a user.
type ProfileUpdate struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Timezone  string
}
