package service

import (
	"context"
	"sync"
	"testing"

	"filekeep/internal/server/database"
	"filekeep/internal/server/database/dbtest"
	"filekeep/internal/server/session"
	"filekeep/internal/server/storage"

	"golang.org/x/crypto/bcrypt"
)

type enqueued struct {
	name string
	job  any
}

// recordingQueue captures jobs instead of publishing them.
type recordingQueue struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, name string, job any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueued{name: name, job: job})
	return nil
}

func (q *recordingQueue) names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	names := make([]string, len(q.jobs))
	for i, j := range q.jobs {
		names[i] = j.name
	}
	return names
}

var testHasher = BcryptHasher{Cost: bcrypt.MinCost}

type fixture struct {
	repo     *dbtest.Repository
	store    *storage.FileSystemStore
	sessions *session.BadgerStore
	jobs     *recordingQueue
	files    *FileService
	users    *UserService
	identity *IdentityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sessions, err := session.OpenBadgerStore("")
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}
	t.Cleanup(func() { sessions.Close() })

	repo := dbtest.NewRepository()
	store := storage.NewFileSystemStore(t.TempDir())
	jobs := &recordingQueue{}

	return &fixture{
		repo:     repo,
		store:    store,
		sessions: sessions,
		jobs:     jobs,
		files:    NewFileService(repo, store, jobs),
		users:    NewUserService(repo, testHasher, jobs),
		identity: NewIdentityService(repo, sessions, testHasher, 0),
	}
}

func (f *fixture) register(t *testing.T, email string) database.UserID {
	t.Helper()
	info, err := f.users.Register(context.Background(), email, "pw")
	if err != nil {
		t.Fatalf("failed to register %s: %v", email, err)
	}
	return info.ID
}
