package api

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"filekeep/internal/server/database"
	"filekeep/internal/server/service"

	"github.com/labstack/echo/v4"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// userKey is the echo context key holding the resolved user id.
const userKey = "filekeep.user"

// RequireUser rejects requests whose X-Token does not resolve to a user.
func RequireUser(identity *service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := identity.Resolve(c.Request().Context(), c.Request().Header.Get(TokenHeader))
			if err != nil {
				return mapServiceError(c, err)
			}
			c.Set(userKey, id)
			return next(c)
		}
	}
}

// OptionalUser resolves X-Token when present. Missing, unknown or expired
// tokens leave the request anonymous.
func OptionalUser(identity *service.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := service.Anonymous
			if token := c.Request().Header.Get(TokenHeader); token != "" {
				resolved, err := identity.Resolve(c.Request().Context(), token)
				switch {
				case err == nil:
					id = resolved
				case !errors.Is(err, service.ErrUnauthorized):
					slog.Warn("failed to resolve optional identity", "error", err)
				}
			}
			c.Set(userKey, id)
			return next(c)
		}
	}
}

// userID returns the requester resolved by RequireUser or OptionalUser.
func userID(c echo.Context) database.UserID {
	if id, ok := c.Get(userKey).(database.UserID); ok {
		return id
	}
	return service.Anonymous
}

// visitor tracks the rate limit state for a single IP.
type visitor struct {
	tokens    float64
	lastCheck time.Time
}

// RateLimiter is a per-IP token-bucket rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     float64 // tokens per second
	burst    int     // max tokens
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter with the given rate (requests/sec) and burst size.
// Stale visitors are dropped every 5 minutes until Stop is called.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rps,
		burst:    burst,
		stop:     make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()

	return rl
}

// Stop ends the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Middleware returns an echo middleware function that enforces rate limits.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !rl.allow(ip) {
				slog.Warn("rate limit exceeded", "ip", ip)
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error": "Too many requests",
				})
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    float64(rl.burst) - 1,
			lastCheck: now,
		}
		return true
	}

	// Add tokens based on elapsed time
	elapsed := now.Sub(v.lastCheck).Seconds()
	v.tokens += elapsed * rl.rate
	if v.tokens > float64(rl.burst) {
		v.tokens = float64(rl.burst)
	}
	v.lastCheck = now

	if v.tokens < 1 {
		return false
	}

	v.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, v := range rl.visitors {
		if v.lastCheck.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// RequestLogger returns an echo middleware that logs requests using slog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"latency_ms", time.Since(start).Milliseconds(),
				"ip", c.RealIP(),
				"bytes_out", res.Size,
			}
			if id := userID(c); id != service.Anonymous {
				attrs = append(attrs, "user_id", id)
			}
			slog.Info("request", attrs...)

			return err
		}
	}
}
