package storage

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// PathIndex reports whether a blob path is referenced by file metadata.
type PathIndex interface {
	LocalPathExists(ctx context.Context, path string) (bool, error)
}

// OrphanSweeper periodically removes blobs that no file record references.
// Blobs younger than the grace period are left alone so that uploads whose
// metadata is still being written are not swept.
type OrphanSweeper struct {
	index    PathIndex
	store    Store
	interval time.Duration
	grace    time.Duration
	now      func() time.Time
	done     chan struct{}
}

// NewOrphanSweeper creates a new orphan sweeper.
func NewOrphanSweeper(index PathIndex, store Store, interval, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{
		index:    index,
		store:    store,
		interval: interval,
		grace:    grace,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in a background goroutine.
func (s *OrphanSweeper) Start(ctx context.Context) {
	slog.Info("orphan sweeper started", "interval", s.interval, "grace", s.grace)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Run once immediately on start
		s.runSweep(ctx)

		for {
			select {
			case <-ticker.C:
				s.runSweep(ctx)
			case <-ctx.Done():
				slog.Info("orphan sweeper stopping")
				close(s.done)
				return
			}
		}
	}()
}

// Wait blocks until the sweeper has fully stopped.
func (s *OrphanSweeper) Wait() {
	<-s.done
}

// basePath strips a size variant suffix ("<uuid>_<size>") from a blob path.
func basePath(path string) string {
	slash := strings.LastIndexAny(path, `/\`)
	if i := strings.LastIndex(path, "_"); i > slash {
		return path[:i]
	}
	return path
}

func (s *OrphanSweeper) runSweep(ctx context.Context) (removed, failed int) {
	blobs, err := s.store.List()
	if err != nil {
		slog.Error("failed to list blobs", "error", err)
		return 0, 1
	}

	cutoff := s.now().Add(-s.grace)
	for _, blob := range blobs {
		if ctx.Err() != nil {
			break
		}
		if blob.ModTime.After(cutoff) {
			continue
		}

		referenced, err := s.index.LocalPathExists(ctx, basePath(blob.Path))
		if err != nil {
			slog.Error("failed to check blob reference", "path", blob.Path, "error", err)
			failed++
			continue
		}
		if referenced {
			continue
		}

		if err := s.store.Delete(blob.Path); err != nil {
			slog.Error("failed to delete orphan blob", "path", blob.Path, "error", err)
			failed++
			continue
		}
		removed++
		slog.Info("removed orphan blob", "path", blob.Path, "bytes", blob.Size)
	}

	slog.Info("orphan sweep complete",
		"removed", removed,
		"failed", failed,
		"scanned", len(blobs),
	)
	return removed, failed
}
