package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t,
		"PORT", "SESSION_BACKEND", "REDIS_ADDR", "FOLDER_PATH", "SESSION_TTL_HOURS",
		"ORPHAN_SWEEP_INTERVAL_HOURS", "ORPHAN_GRACE_PERIOD_HOURS", "APP_ENV",
	)
	t.Chdir(t.TempDir())

	cfg := Load()

	if cfg.Port != "5000" {
		t.Errorf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionRedis {
		t.Errorf("expected redis backend, got %s", cfg.SessionBackend)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected default redis address, got %q", cfg.RedisAddr)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session ttl, got %s", cfg.SessionTTL)
	}
	if want := filepath.Join(os.TempDir(), "files_manager"); cfg.FolderPath != want {
		t.Errorf("expected folder path %s, got %s", want, cfg.FolderPath)
	}
	if cfg.OrphanSweepInterval != 0 {
		t.Errorf("expected sweeping disabled, got %s", cfg.OrphanSweepInterval)
	}
	if cfg.OrphanGracePeriod != time.Hour {
		t.Errorf("expected 1h grace period, got %s", cfg.OrphanGracePeriod)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("SESSION_BACKEND", "Badger")
	t.Setenv("SESSION_TTL_HOURS", "0.5")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %s", cfg.Port)
	}
	if cfg.SessionBackend != SessionBadger {
		t.Errorf("expected badger backend, got %s", cfg.SessionBackend)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("expected 30m session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected 2.5 rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production mode")
	}
}

func TestLoad_EmptyRedisAddrDisablesRedis(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SESSION_BACKEND", "badger")

	cfg := Load()
	if cfg.RedisAddr != "" {
		t.Errorf("expected empty redis address, got %q", cfg.RedisAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("badger without redis should validate: %v", err)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RATE_LIMIT_BURST", "lots")
	t.Setenv("SESSION_TTL_HOURS", "forever")

	cfg := Load()

	if cfg.RateLimitBurst != 20 {
		t.Errorf("expected default burst 20, got %d", cfg.RateLimitBurst)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("expected default ttl, got %s", cfg.SessionTTL)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetEnv(t, "PORT")

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7070\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg := Load()
	if cfg.Port != "7070" {
		t.Errorf("expected port from .env, got %s", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"redis", Config{SessionBackend: SessionRedis, RedisAddr: "localhost:6379", FolderPath: "/tmp/x"}, false},
		{"redis without address", Config{SessionBackend: SessionRedis, FolderPath: "/tmp/x"}, true},
		{"badger without redis", Config{SessionBackend: SessionBadger, FolderPath: "/tmp/x"}, false},
		{"unknown backend", Config{SessionBackend: "memcached", FolderPath: "/tmp/x"}, true},
		{"empty folder", Config{SessionBackend: SessionBadger}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
