package main

import (
	"testing"

	"filekeep/internal/server/config"
)

func TestRun_ReturnsStartupError(t *testing.T) {
	cfg := &config.Config{SessionBackend: "memcached", FolderPath: t.TempDir()}

	if err := run(cfg); err == nil {
		t.Fatal("expected run to return the startup error")
	}
}
