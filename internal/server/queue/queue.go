// Package queue publishes background job records onto Redis lists.
// Consumers pop jobs with BRPOP; nothing here waits for them to finish.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"filekeep/internal/server/database"
)

const (
	Thumbnails = "filekeep:queue:thumbnails"
	Welcome    = "filekeep:queue:welcome"
)

// ThumbnailJob asks the thumbnail worker to render size variants of an image.
type ThumbnailJob struct {
	UserID database.UserID `json:"userId,string"`
	FileID database.FileID `json:"fileId,string"`
	Name   string          `json:"name"`
}

// NewThumbnailJob builds the job record for an uploaded image.
func NewThumbnailJob(user database.UserID, file database.FileID) ThumbnailJob {
	return ThumbnailJob{
		UserID: user,
		FileID: file,
		Name:   fmt.Sprintf("Image thumbnail [%s-%s]", user, file),
	}
}

// WelcomeJob asks the mailer to greet a newly registered user.
type WelcomeJob struct {
	UserID database.UserID `json:"userId,string"`
}

// RedisQueue pushes JSON-encoded jobs onto Redis lists.
type RedisQueue struct {
	client *redis.Client
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client}
}

// Enqueue appends job to the named list.
func (q *RedisQueue) Enqueue(ctx context.Context, name string, job any) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job for %s: %w", name, err)
	}
	if err := q.client.LPush(ctx, name, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job on %s: %w", name, err)
	}
	return nil
}

// LogQueue only logs jobs. It stands in when no Redis is configured.
type LogQueue struct{}

func (LogQueue) Enqueue(_ context.Context, name string, job any) error {
	slog.Info("job dropped, no queue configured", "queue", name, "job", job)
	return nil
}
