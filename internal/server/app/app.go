// Package app builds the process-wide clients once and hands them to the
// services that need them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"filekeep/internal/server/config"
	"filekeep/internal/server/database"
	"filekeep/internal/server/queue"
	"filekeep/internal/server/service"
	"filekeep/internal/server/session"
	"filekeep/internal/server/storage"
)

// App holds the connected clients and the services built on them.
type App struct {
	Config   *config.Config
	DB       *database.DB
	Redis    *redis.Client // nil when REDIS_ADDR is empty
	Sessions session.Store
	Store    *storage.FileSystemStore

	Identity *service.IdentityService
	Users    *service.UserService
	Files    *service.FileService
	Status   *service.StatusService

	// Sweeper is nil when orphan sweeping is disabled.
	Sweeper *storage.OrphanSweeper

	closers []func() error
}

// New connects to every backend named by cfg. On error, anything already
// opened is closed again.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg}
	ready := false
	defer func() {
		if !ready {
			if err := a.Close(); err != nil {
				slog.Warn("failed to release clients after startup error", "error", err)
			}
		}
	}()

	// Database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { db.Close(); return nil })

	if err := db.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("database migrations complete")

	// Redis
	if cfg.RedisAddr != "" {
		client, err := session.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		a.Redis = client
		a.closers = append(a.closers, client.Close)
		slog.Info("connected to redis", "addr", cfg.RedisAddr)
	}

	// Sessions
	switch cfg.SessionBackend {
	case config.SessionRedis:
		a.Sessions = session.NewRedisStore(a.Redis)
	case config.SessionBadger:
		badgerStore, err := session.OpenBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		a.Sessions = badgerStore
		a.closers = append(a.closers, badgerStore.Close)
	}
	slog.Info("session store ready", "backend", cfg.SessionBackend)

	// Content storage
	a.Store = storage.NewFileSystemStore(cfg.FolderPath)
	if err := a.Store.EnsureDir(); err != nil {
		return nil, err
	}
	slog.Info("file storage initialized", "path", cfg.FolderPath)

	// Jobs
	var jobs service.JobQueue = queue.LogQueue{}
	if a.Redis != nil {
		jobs = queue.NewRedisQueue(a.Redis)
	}

	// Services
	repo := database.NewRepository(a.DB)
	hasher := service.BcryptHasher{}
	a.Identity = service.NewIdentityService(repo, a.Sessions, hasher, cfg.SessionTTL)
	a.Users = service.NewUserService(repo, hasher, jobs)
	a.Files = service.NewFileService(repo, a.Store, jobs)
	a.Status = service.NewStatusService(a.Sessions, a.DB, repo)

	if cfg.OrphanSweepInterval > 0 {
		a.Sweeper = storage.NewOrphanSweeper(repo, a.Store, cfg.OrphanSweepInterval, cfg.OrphanGracePeriod)
	}

	ready = true
	return a, nil
}

// Close releases every client in reverse order of opening.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
