package service

import (
	"context"
	"errors"
	"fmt"

	"filekeep/internal/server/database"

	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for the service layer.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrFolderContent = errors.New("a folder doesn't have content")
	ErrUserExists    = errors.New("user already exists")
)

// ValidationError reports a malformed or missing request field. Msg is safe
// to return to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// Anonymous is the requester id used when no identity was resolved.
const Anonymous database.UserID = 0

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *database.User) error
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
	GetUserByID(ctx context.Context, id database.UserID) (*database.User, error)
}

// FileRepository persists file metadata.
type FileRepository interface {
	CreateFile(ctx context.Context, file *database.File) error
	GetFile(ctx context.Context, id database.FileID) (*database.File, error)
	GetOwnedFile(ctx context.Context, id database.FileID, owner database.UserID) (*database.File, error)
	ListFiles(ctx context.Context, owner database.UserID, parent database.ParentRef, offset, limit int) ([]*database.File, error)
	SetPublic(ctx context.Context, id database.FileID, owner database.UserID, public bool) (*database.File, error)
}

// StatsRepository reports aggregate counters.
type StatsRepository interface {
	GetStats(ctx context.Context) (*database.Stats, error)
}

// JobQueue publishes background jobs without waiting for them.
type JobQueue interface {
	Enqueue(ctx context.Context, name string, job any) error
}

// PasswordHasher is a one-way password hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
