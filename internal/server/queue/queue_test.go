package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestThumbnailJob_JSON(t *testing.T) {
	job := NewThumbnailJob(3, 17)

	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["userId"] != "3" {
		t.Errorf("userId = %v, want \"3\"", got["userId"])
	}
	if got["fileId"] != "17" {
		t.Errorf("fileId = %v, want \"17\"", got["fileId"])
	}
	if got["name"] != "Image thumbnail [3-17]" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestLogQueue(t *testing.T) {
	if err := (LogQueue{}).Enqueue(context.Background(), Welcome, WelcomeJob{UserID: 1}); err != nil {
		t.Errorf("Enqueue: %v", err)
	}
}

func TestRedisQueue_Enqueue(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis queue tests")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("TEST_REDIS_PASSWORD")})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}

	name := fmt.Sprintf("filekeep:test:%d", time.Now().UnixNano())
	defer client.Del(ctx, name)

	q := NewRedisQueue(client)
	if err := q.Enqueue(ctx, name, NewThumbnailJob(1, 2)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	res, err := client.BRPop(ctx, time.Second, name).Result()
	if err != nil {
		t.Fatalf("BRPop: %v", err)
	}
	var job ThumbnailJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if job.UserID != 1 || job.FileID != 2 {
		t.Errorf("job = %+v", job)
	}
}
