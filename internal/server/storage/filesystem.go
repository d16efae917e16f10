package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBlobNotFound is returned when a blob (or the requested size variant of
// it) does not exist or is not a regular file.
var ErrBlobNotFound = errors.New("blob not found")

// Store defines the interface for content storage backends.
type Store interface {
	EnsureDir() error
	Save(data io.Reader) (path string, n int64, err error)
	Open(path, size string) (io.ReadCloser, error)
	Delete(path string) error
	List() ([]Blob, error)
}

// Blob describes a regular file found in the content directory.
type Blob struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// FileSystemStore stores file content on the local filesystem under randomly
// generated names.
type FileSystemStore struct {
	basePath string
}

// NewFileSystemStore creates a new filesystem storage backend.
func NewFileSystemStore(basePath string) *FileSystemStore {
	return &FileSystemStore{basePath: basePath}
}

// BasePath returns the content directory.
func (fs *FileSystemStore) BasePath() string {
	return fs.basePath
}

// EnsureDir creates the storage directory if it doesn't exist.
func (fs *FileSystemStore) EnsureDir() error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", fs.basePath, err)
	}
	return nil
}

// Save writes data to a new blob named by a random UUID and returns its
// path and the number of bytes written.
func (fs *FileSystemStore) Save(data io.Reader) (string, int64, error) {
	if err := fs.EnsureDir(); err != nil {
		return "", 0, err
	}

	filePath := filepath.Join(fs.basePath, uuid.NewString())

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(filePath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, n, nil
}

// VariantPath returns the path of a size variant of the blob at path.
// An empty size refers to the original blob.
func VariantPath(path, size string) string {
	if size == "" {
		return path
	}
	return path + "_" + size
}

// Open opens the blob at path, or its size variant when size is set.
func (fs *FileSystemStore) Open(path, size string) (io.ReadCloser, error) {
	if strings.ContainsAny(size, `/\`) {
		return nil, ErrBlobNotFound
	}
	filePath := VariantPath(path, size)

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, ErrBlobNotFound
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return file, nil
}

// Delete removes a stored blob. Missing blobs are not an error.
func (fs *FileSystemStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// List returns the regular files in the content directory. A missing
// directory yields no blobs.
func (fs *FileSystemStore) List() ([]Blob, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	blobs := make([]Blob, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		blobs = append(blobs, Blob{
			Path:    filepath.Join(fs.basePath, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return blobs, nil
}
