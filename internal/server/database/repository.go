package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

const fileColumns = `id, owner_id, name, type, is_public, parent_id, local_path, created_at`

// Repository provides persistence for file metadata.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var (
		f         File
		fileType  string
		parentID  *int64
		localPath *string
	)
	if err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Name,
		&fileType,
		&f.IsPublic,
		&parentID,
		&localPath,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}

	t, ok := ParseFileType(fileType)
	if !ok {
		return nil, fmt.Errorf("file %d has unknown type %q", f.ID, fileType)
	}
	f.Type = t

	f.Parent = RootParent
	if parentID != nil {
		f.Parent = ParentOf(FileID(*parentID))
	}
	if localPath != nil {
		f.LocalPath = *localPath
	}
	return &f, nil
}

// parentColumn converts a parent reference to the nullable column value.
func parentColumn(p ParentRef) (*int64, error) {
	switch p.Kind {
	case ParentRoot:
		return nil, nil
	case ParentFolder:
		id := int64(p.ID)
		return &id, nil
	default:
		return nil, errors.New("cannot store an unmatchable parent reference")
	}
}

// CreateFile inserts a new file record and fills in its generated id and timestamp.
func (r *Repository) CreateFile(ctx context.Context, file *File) error {
	parentID, err := parentColumn(file.Parent)
	if err != nil {
		return err
	}
	var localPath *string
	if file.Type.HasContent() {
		localPath = &file.LocalPath
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO files (owner_id, name, type, is_public, parent_id, local_path)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		file.OwnerID,
		file.Name,
		file.Type.String(),
		file.IsPublic,
		parentID,
		localPath,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// GetFile retrieves a file by id regardless of its owner.
func (r *Repository) GetFile(ctx context.Context, id FileID) (*File, error) {
	file, err := scanFile(r.db.Pool.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// GetOwnedFile retrieves a file by id only if it belongs to owner.
func (r *Repository) GetOwnedFile(ctx context.Context, id FileID, owner UserID) (*File, error) {
	file, err := scanFile(r.db.Pool.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1 AND owner_id = $2`, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// ListFiles returns one page of owner's files under parent, newest first.
func (r *Repository) ListFiles(ctx context.Context, owner UserID, parent ParentRef, offset, limit int) ([]*File, error) {
	var (
		rows pgx.Rows
		err  error
	)
	switch parent.Kind {
	case ParentRoot:
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+fileColumns+` FROM files
			WHERE owner_id = $1 AND parent_id IS NULL
			ORDER BY id DESC
			OFFSET $2 LIMIT $3
		`, owner, offset, limit)
	case ParentFolder:
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+fileColumns+` FROM files
			WHERE owner_id = $1 AND parent_id = $2
			ORDER BY id DESC
			OFFSET $3 LIMIT $4
		`, owner, parent.ID, offset, limit)
	default:
		return []*File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	files := []*File{}
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// SetPublic updates the visibility of an owned file and returns the updated record.
func (r *Repository) SetPublic(ctx context.Context, id FileID, owner UserID, public bool) (*File, error) {
	file, err := scanFile(r.db.Pool.QueryRow(ctx, `
		UPDATE files SET is_public = $3
		WHERE id = $1 AND owner_id = $2
		RETURNING `+fileColumns,
		id, owner, public))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}
	return file, nil
}

// LocalPathExists reports whether any file record references the blob at path.
func (r *Repository) LocalPathExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM files WHERE local_path = $1)", path,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up local path: %w", err)
	}
	return exists, nil
}

// GetStats returns the number of users and files.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM files)
	`).Scan(
		&stats.Users,
		&stats.Files,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
