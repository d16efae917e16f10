// Package session maps opaque session tokens to user ids in an expiring
// key-value store.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("session key not found")

// Store is an expiring key-value cache. Values are stored as strings.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// TokenKey returns the cache key under which a token is stored.
func TokenKey(token string) string {
	return "auth_" + token
}
