package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeIndex struct {
	paths map[string]bool
	err   error
}

func (f *fakeIndex) LocalPathExists(_ context.Context, path string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.paths[path], nil
}

func TestOrphanSweeper_RunSweep(t *testing.T) {
	t.Run("removes unreferenced blobs and keeps referenced ones", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		kept, _, _ := store.Save(strings.NewReader("kept"))
		orphan, _, _ := store.Save(strings.NewReader("orphan"))
		os.WriteFile(kept+"_100", []byte("thumb"), 0644)
		os.WriteFile(orphan+"_100", []byte("thumb"), 0644)

		index := &fakeIndex{paths: map[string]bool{kept: true}}
		sweeper := NewOrphanSweeper(index, store, time.Hour, 0)
		sweeper.now = func() time.Time { return time.Now().Add(time.Minute) }

		removed, failed := sweeper.runSweep(context.Background())
		if removed != 2 || failed != 0 {
			t.Errorf("expected 2 removed and 0 failed, got %d and %d", removed, failed)
		}

		for _, p := range []string{kept, kept + "_100"} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("expected %s to survive: %v", p, err)
			}
		}
		for _, p := range []string{orphan, orphan + "_100"} {
			if _, err := os.Stat(p); !os.IsNotExist(err) {
				t.Errorf("expected %s to be removed", p)
			}
		}
	})

	t.Run("leaves blobs inside the grace period", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		fresh, _, _ := store.Save(strings.NewReader("fresh"))

		sweeper := NewOrphanSweeper(&fakeIndex{}, store, time.Hour, time.Hour)

		removed, _ := sweeper.runSweep(context.Background())
		if removed != 0 {
			t.Errorf("expected nothing removed, got %d", removed)
		}
		if _, err := os.Stat(fresh); err != nil {
			t.Errorf("expected fresh blob to survive: %v", err)
		}
	})

	t.Run("lookup errors keep the blob", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("data"))

		sweeper := NewOrphanSweeper(&fakeIndex{err: errors.New("db down")}, store, time.Hour, 0)
		sweeper.now = func() time.Time { return time.Now().Add(time.Minute) }

		removed, failed := sweeper.runSweep(context.Background())
		if removed != 0 || failed != 1 {
			t.Errorf("expected 0 removed and 1 failed, got %d and %d", removed, failed)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected blob to survive: %v", err)
		}
	})
}

func TestOrphanSweeper_StartStop(t *testing.T) {
	store := NewFileSystemStore(t.TempDir())
	sweeper := NewOrphanSweeper(&fakeIndex{}, store, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestBasePath(t *testing.T) {
	tests := map[string]string{
		"/data/abc-def":           "/data/abc-def",
		"/data/abc-def_250":       "/data/abc-def",
		"/data_dir/abc-def":       "/data_dir/abc-def",
		filepath.Join("x", "a_b"): filepath.Join("x", "a"),
	}
	for in, want := range tests {
		if got := basePath(in); got != want {
			t.Errorf("basePath(%q) = %q, want %q", in, got, want)
		}
	}
}
