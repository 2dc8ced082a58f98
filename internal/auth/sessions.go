package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dayplanner/internal/config"
	"dayplanner/internal/db"
	"dayplanner/internal/db/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session token.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	// Version must equal the user's session_version for the token to
	// resolve. Password changes bump it.
	Version int `json:"ver"`
	jwt.RegisteredClaims
}

// Sessions issues and resolves signed session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	issuer string
	users  UserStore

	now func() time.Time
}

// NewSessions creates a token manager for cfg, resolving users from users.
func NewSessions(cfg config.SessionConfig, users UserStore) *Sessions {
	return &Sessions{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		users:  users,
		now:    time.Now,
	}
}

// TTL returns how long an issued token stays valid.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a session token for user at their current session version.
func (s *Sessions) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Version:  user.SessionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("error signing session token: %w", err)
	}
	return signed, nil
}

// Resolve validates token and returns the user it belongs to. Expired,
// forged or superseded tokens and deleted users all yield
// ErrInvalidSession.
func (s *Sessions) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidSession
	}
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session user: %w", err)
	}
	if user.SessionVersion != claims.Version {
		return nil, ErrInvalidSession
	}
	return user, nil
}

func (s *Sessions) parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
