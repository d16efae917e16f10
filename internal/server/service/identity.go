package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"filekeep/internal/server/database"
	"filekeep/internal/server/session"
)

// DefaultSessionTTL is how long an issued token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// tokenBytes is the amount of randomness in a session token.
const tokenBytes = 32

// IdentityService issues, resolves and revokes opaque session tokens.
type IdentityService struct {
	users    UserRepository
	sessions session.Store
	hasher   PasswordHasher
	ttl      time.Duration
}

// NewIdentityService creates a new identity service. A zero ttl selects
// DefaultSessionTTL.
func NewIdentityService(users UserRepository, sessions session.Store, hasher PasswordHasher, ttl time.Duration) *IdentityService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &IdentityService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
	}
}

// Authenticate checks credentials and returns a fresh session token.
// Unknown users and wrong passwords both yield ErrUnauthorized.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", ErrUnauthorized
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	if err := s.sessions.Set(ctx, session.TokenKey(token), user.ID.String(), s.ttl); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("user authenticated", "user_id", user.ID)
	return token, nil
}

// Resolve returns the user a token was issued to.
func (s *IdentityService) Resolve(ctx context.Context, token string) (database.UserID, error) {
	if token == "" {
		return Anonymous, ErrUnauthorized
	}

	value, err := s.sessions.Get(ctx, session.TokenKey(token))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Anonymous, ErrUnauthorized
		}
		return Anonymous, fmt.Errorf("failed to resolve session: %w", err)
	}

	id, ok := database.ParseUserID(value)
	if !ok {
		slog.Warn("discarding malformed session entry")
		return Anonymous, ErrUnauthorized
	}
	return id, nil
}

// Revoke deletes the token. Unknown tokens are not an error.
func (s *IdentityService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, session.TokenKey(token)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// generateToken returns tokenBytes of crypto/rand output, hex encoded.
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("crypto/rand failure: %w", err)
	}
	return hex.EncodeToString(b), nil
}
