package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migration is one forward-only schema step, recorded by version in
// schema_migrations once applied.
type migration struct {
	Version string
	SQL     string
}

// migrations are applied in order. Root files store a NULL parent_id, and
// folders are the only rows without a local_path.
var migrations = []migration{
	{
		Version: "000001_create_users",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id            BIGSERIAL    PRIMARY KEY,
				email         VARCHAR(254) NOT NULL UNIQUE,
				password_hash VARCHAR(255) NOT NULL,
				created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Version: "000002_create_files",
		SQL: `
			CREATE TABLE IF NOT EXISTS files (
				id         BIGSERIAL    PRIMARY KEY,
				owner_id   BIGINT       NOT NULL REFERENCES users(id),
				name       VARCHAR(255) NOT NULL,
				type       VARCHAR(16)  NOT NULL CHECK (type IN ('folder', 'file', 'image')),
				is_public  BOOLEAN      NOT NULL DEFAULT FALSE,
				parent_id  BIGINT,
				local_path TEXT,
				created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
				CHECK ((type = 'folder') = (local_path IS NULL))
			);
			CREATE INDEX IF NOT EXISTS idx_files_owner_parent ON files(owner_id, parent_id, id DESC);
			CREATE INDEX IF NOT EXISTS idx_files_local_path ON files(local_path);
		`,
	},
}

// DB owns the pgx pool shared by the file and user repositories.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool for databaseURL and verifies it with a ping.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = "filekeep"
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database",
		"host", config.ConnConfig.Host,
		"database", config.ConnConfig.Database,
		"max_conns", config.MaxConns,
	)
	return &DB{Pool: pool}, nil
}

// RunMigrations brings the users and files tables up to date. Each step runs
// in its own transaction together with its schema_migrations row.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	pending := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return err
		}
		pending++
		slog.Info("applied migration", "version", m.Version)
	}

	slog.Info("database schema up to date", "applied", pending, "total", len(migrations))
	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		return nil
	})
}

// AppliedMigrations lists recorded schema versions in order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan schema_migrations: %w", err)
	}
	return versions, nil
}

// HealthCheck pings the pool; it backs the db flag of GET /status.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
}
