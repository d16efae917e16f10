// Package dbtest provides an in-memory stand-in for the PostgreSQL repository.
package dbtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"filekeep/internal/server/database"
)

// Repository keeps users and files in memory. It honours the same error
// contract as database.Repository.
type Repository struct {
	mu         sync.Mutex
	users      map[database.UserID]*database.User
	files      map[database.FileID]*database.File
	nextUserID database.UserID
	nextFileID database.FileID

	// FailCreateFile, when set, is returned by CreateFile.
	FailCreateFile error
}

func NewRepository() *Repository {
	return &Repository{
		users: make(map[database.UserID]*database.User),
		files: make(map[database.FileID]*database.File),
	}
}

func (r *Repository) CreateUser(_ context.Context, user *database.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return database.ErrEmailTaken
		}
	}
	r.nextUserID++
	user.ID = r.nextUserID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *Repository) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (r *Repository) GetUserByID(_ context.Context, id database.UserID) (*database.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (r *Repository) CreateFile(_ context.Context, file *database.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreateFile != nil {
		return r.FailCreateFile
	}
	r.nextFileID++
	file.ID = r.nextFileID
	file.CreatedAt = time.Now().UTC()
	stored := *file
	r.files[file.ID] = &stored
	return nil
}

func (r *Repository) GetFile(_ context.Context, id database.FileID) (*database.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok {
		return nil, database.ErrFileNotFound
	}
	found := *f
	return &found, nil
}

func (r *Repository) GetOwnedFile(_ context.Context, id database.FileID, owner database.UserID) (*database.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || f.OwnerID != owner {
		return nil, database.ErrFileNotFound
	}
	found := *f
	return &found, nil
}

func (r *Repository) ListFiles(_ context.Context, owner database.UserID, parent database.ParentRef, offset, limit int) ([]*database.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := []*database.File{}
	if parent.Kind == database.ParentNone {
		return files, nil
	}
	for _, f := range r.files {
		if f.OwnerID == owner && f.Parent == parent {
			found := *f
			files = append(files, &found)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ID > files[j].ID })

	if offset >= len(files) {
		return []*database.File{}, nil
	}
	end := offset + limit
	if end > len(files) {
		end = len(files)
	}
	return files[offset:end], nil
}

func (r *Repository) SetPublic(_ context.Context, id database.FileID, owner database.UserID, public bool) (*database.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[id]
	if !ok || f.OwnerID != owner {
		return nil, database.ErrFileNotFound
	}
	f.IsPublic = public
	found := *f
	return &found, nil
}

func (r *Repository) LocalPathExists(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.LocalPath != "" && f.LocalPath == path {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) GetStats(_ context.Context) (*database.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return &database.Stats{
		Users: int64(len(r.users)),
		Files: int64(len(r.files)),
	}, nil
}
