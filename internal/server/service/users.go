package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"filekeep/internal/server/database"
	"filekeep/internal/server/queue"
)

// UserInfo is the public view of a user.
type UserInfo struct {
	ID    database.UserID `json:"id,string"`
	Email string          `json:"email"`
}

// UserService registers users and looks up profiles.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
	jobs   JobQueue
}

func NewUserService(repo UserRepository, hasher PasswordHasher, jobs JobQueue) *UserService {
	return &UserService{repo: repo, hasher: hasher, jobs: jobs}
}

// Register creates an account and schedules the welcome job.
func (s *UserService) Register(ctx context.Context, email, password string) (*UserInfo, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalid("Missing email")
	}
	if password == "" {
		return nil, invalid("Missing password")
	}
	if !validEmail(email) {
		return nil, invalid("Invalid email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &database.User{Email: email, PasswordHash: hash}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.jobs.Enqueue(ctx, queue.Welcome, queue.WelcomeJob{UserID: user.ID}); err != nil {
		slog.Error("failed to enqueue welcome job", "user_id", user.ID, "error", err)
	}

	slog.Info("user registered", "user_id", user.ID)
	return &UserInfo{ID: user.ID, Email: user.Email}, nil
}

// Me returns the profile of the given user.
func (s *UserService) Me(ctx context.Context, id database.UserID) (*UserInfo, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &UserInfo{ID: user.ID, Email: user.Email}, nil
}

// validEmail accepts a bare address such as "a@b.com".
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}
