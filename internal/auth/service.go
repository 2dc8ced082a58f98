// Package auth verifies credentials, manages accounts and issues session
// tokens for the planner's users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"dayplanner/internal/db"
	"dayplanner/internal/db/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned when a username/password pair does
	// not match, including when the current password given for a change is
	// wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrPasswordMismatch is returned when the two new passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrWeakPassword is returned when a new password is too short.
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrPasswordTooLong is returned when a password exceeds bcrypt's limit.
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d bytes", MaxPasswordLength)
	// ErrBadRequest wraps field validation failures.
	ErrBadRequest = errors.New("invalid input")
	// ErrInvalidSession is returned when a session token cannot be resolved
	// to a current user.
	ErrInvalidSession = errors.New("session expired, please log in again")

	// Aliases of the store errors; a unique violation from a racing insert
	// reports the same sentinel as the pre-check.
	ErrDuplicateUsername = db.ErrDuplicateUsername
	ErrDuplicateEmail    = db.ErrDuplicateEmail
)

// UserStore is the account storage the service needs. Both store backends
// implement it.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, except uuid.UUID) (bool, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, p models.ProfileUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// ProfileInput is the editable part of a user's profile.
type ProfileInput struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Timezone  string `form:"timezone" validate:"omitempty,max=64"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Service implements account operations over a UserStore.
type Service struct {
	users    UserStore
	hasher   *PasswordHasher
	validate *validator.Validate
}

// NewService creates a Service.
func NewService(users UserStore, hasher *PasswordHasher) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &Service{
		users:    users,
		hasher:   hasher,
		validate: validate,
	}
}

// Authenticate returns the user for a matching username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	if !s.CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CheckPassword reports whether password is the user's password.
func (s *Service) CheckPassword(user *models.User, password string) bool {
	return s.hasher.Verify(password, user.PasswordHash)
}

// CreateAccount registers a new user. Checks run in order: field format,
// password confirmation, password strength, username then email
// uniqueness.
func (s *Service) CreateAccount(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return nil, badRequest(err)
	}
	if in.Password1 != in.Password2 {
		return nil, ErrPasswordMismatch
	}
	if err := checkStrength(in.Password1); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, in.Username, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	taken, err = s.users.EmailTaken(ctx, in.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(in.Password1)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Timezone:     "UTC",
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password of user after verifying the
// current one. The returned user carries the bumped session version, so
// tokens issued before the change no longer resolve.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, oldPassword, new1, new2 string) (*models.User, error) {
	if new1 != new2 {
		return nil, ErrPasswordMismatch
	}
	if err := checkStrength(new1); err != nil {
		return nil, err
	}
	if !s.CheckPassword(user, oldPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.storePassword(ctx, user.ID, new1)
}

// SetPassword replaces a password without knowing the current one.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) (*models.User, error) {
	if err := checkStrength(password); err != nil {
		return nil, err
	}
	return s.storePassword(ctx, userID, password)
}

func (s *Service) storePassword(ctx context.Context, userID uuid.UUID, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}
	user, err := s.users.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return nil, fmt.Errorf("error updating password: %w", err)
	}
	return user, nil
}

// UpdateProfile saves in for userID. Username and email must not belong
// to another user; an empty timezone means UTC.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Timezone = strings.TrimSpace(in.Timezone)
	if err := s.validate.Struct(in); err != nil {
		return nil, badRequest(err)
	}
	if in.Timezone == "" {
		in.Timezone = "UTC"
	}
	if err := checkTimezone(in.Timezone); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameTaken(ctx, in.Username, userID)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}
	taken, err = s.users.EmailTaken(ctx, in.Email, userID)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, ErrDuplicateEmail
	}

	user, err := s.users.UpdateUserProfile(ctx, userID, models.ProfileUpdate{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Timezone:  in.Timezone,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) || errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the user and, through the foreign key, their tasks.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return err
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// UserByUsername looks up a user for the admin CLI.
func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetUserByUsername(ctx, username)
}

func checkTimezone(name string) error {
	if name == "Local" {
		return fmt.Errorf("%w: unknown timezone %q", ErrBadRequest, name)
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrBadRequest, name)
	}
	return nil
}

// badRequest turns validator output into a one-line message wrapping
// ErrBadRequest.
func badRequest(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrBadRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "enter a valid email address"
	case "username":
		return "username may contain only letters, digits and @/./+/-/_"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return field + " is invalid"
}
