package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSystemStore_Save(t *testing.T) {
	t.Run("saves file to disk", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		path, n, err := store.Save(bytes.NewReader([]byte("test content")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if n != 12 {
			t.Errorf("expected 12 bytes written, got %d", n)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("expected blob under %s, got %s", dir, path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "test content" {
			t.Errorf("expected 'test content', got %q", content)
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "files_manager")
		store := NewFileSystemStore(dir)

		path, _, err := store.Save(strings.NewReader("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected blob to exist: %v", err)
		}
	})

	t.Run("generates distinct names", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())

		first, _, err := store.Save(strings.NewReader("a"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _, err := store.Save(strings.NewReader("a"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first == second {
			t.Errorf("expected distinct paths, both were %s", first)
		}
	})

	t.Run("saves large content", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())

		largeContent := strings.Repeat("x", 1024*1024) // 1MB
		_, n, err := store.Save(strings.NewReader(largeContent))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if n != int64(len(largeContent)) {
			t.Errorf("expected %d bytes, got %d", len(largeContent), n)
		}
	})
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("failed to read blob: %v", err)
	}
	return string(b)
}

func TestFileSystemStore_Open(t *testing.T) {
	t.Run("opens original blob", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("original"))

		rc, err := store.Open(path, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := readAll(t, rc); got != "original" {
			t.Errorf("expected 'original', got %q", got)
		}
	})

	t.Run("opens size variant", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("original"))
		os.WriteFile(path+"_100", []byte("thumb"), 0644)

		rc, err := store.Open(path, "100")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := readAll(t, rc); got != "thumb" {
			t.Errorf("expected 'thumb', got %q", got)
		}
	})

	t.Run("missing variant is not found", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("original"))

		if _, err := store.Open(path, "500"); !errors.Is(err, ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})

	t.Run("directory is not found", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)
		os.Mkdir(filepath.Join(dir, "blob_250"), 0755)

		if _, err := store.Open(filepath.Join(dir, "blob"), "250"); !errors.Is(err, ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})

	t.Run("size with separators is rejected", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("original"))

		if _, err := store.Open(path, "../etc"); !errors.Is(err, ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})
}

func TestFileSystemStore_Delete(t *testing.T) {
	t.Run("deletes existing file", func(t *testing.T) {
		store := NewFileSystemStore(t.TempDir())
		path, _, _ := store.Save(strings.NewReader("data"))

		if err := store.Delete(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected file to be deleted")
		}
	})

	t.Run("no error for nonexistent file", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)

		if err := store.Delete(filepath.Join(dir, "nonexistent")); err != nil {
			t.Errorf("expected no error for missing file, got %v", err)
		}
	})
}

func TestFileSystemStore_List(t *testing.T) {
	t.Run("lists regular files only", func(t *testing.T) {
		dir := t.TempDir()
		store := NewFileSystemStore(dir)
		store.Save(strings.NewReader("one"))
		store.Save(strings.NewReader("two"))
		os.Mkdir(filepath.Join(dir, "subdir"), 0755)

		blobs, err := store.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(blobs) != 2 {
			t.Fatalf("expected 2 blobs, got %d", len(blobs))
		}
		for _, b := range blobs {
			if b.Size != 3 {
				t.Errorf("expected size 3 for %s, got %d", b.Path, b.Size)
			}
		}
	})

	t.Run("missing directory yields nothing", func(t *testing.T) {
		store := NewFileSystemStore(filepath.Join(t.TempDir(), "absent"))

		blobs, err := store.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(blobs) != 0 {
			t.Errorf("expected no blobs, got %d", len(blobs))
		}
	})
}

func TestVariantPath(t *testing.T) {
	if got := VariantPath("/data/abc", ""); got != "/data/abc" {
		t.Errorf("expected /data/abc, got %s", got)
	}
	if got := VariantPath("/data/abc", "250"); got != "/data/abc_250" {
		t.Errorf("expected /data/abc_250, got %s", got)
	}
}
