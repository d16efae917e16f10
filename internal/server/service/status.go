package service

import (
	"context"
	"fmt"

	"filekeep/internal/server/database"
)

// Pinger is implemented by the session store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker is implemented by the database pool.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Status reports whether the backing services are reachable.
type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// StatusService reports backend health and aggregate counters.
type StatusService struct {
	cache Pinger
	db    HealthChecker
	stats StatsRepository
}

func NewStatusService(cache Pinger, db HealthChecker, stats StatsRepository) *StatusService {
	return &StatusService{cache: cache, db: db, stats: stats}
}

func (s *StatusService) Status(ctx context.Context) Status {
	return Status{
		Redis: s.cache.Ping(ctx) == nil,
		DB:    s.db.HealthCheck(ctx) == nil,
	}
}

func (s *StatusService) Stats(ctx context.Context) (*database.Stats, error) {
	stats, err := s.stats.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
