package queue

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Test helper: get Redis URL from env or default, skipping when unreachable
func redisTestURL(t *testing.T) string {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379"
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Skipf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if client.Ping(ctx).Err() != nil {
		t.Skip("Redis not available, skipping test")
	}
	return url
}

func TestNewRedisQueue_Unreachable(t *testing.T) {
	if _, err := newRedisQueue(RedisConfig{URL: "redis://127.0.0.1:1"}); err == nil {
		t.Error("expected a connection error")
	}
}

func TestRedisQueue_EveryInstanceReceives(t *testing.T) {
	url := redisTestURL(t)
	stream := fmt.Sprintf("availmon-test-%d", time.Now().UnixNano())

	qa, err := newRedisQueue(RedisConfig{URL: url, Stream: stream, Consumer: "a"})
	if err != nil {
		t.Fatalf("newRedisQueue: %v", err)
	}
	defer func() { _ = qa.Close() }()
	qb, err := newRedisQueue(RedisConfig{URL: url, Stream: stream, Consumer: "b"})
	if err != nil {
		t.Fatalf("newRedisQueue: %v", err)
	}
	defer func() {
		qb.client.Del(context.Background(), qb.streamName("reloaded"))
		_ = qb.Close()
	}()

	var a, b atomic.Int32
	if err := qa.Subscribe("reloaded", func([]byte) error { a.Add(1); return nil }); err != nil {
		t.Fatal(err)
	}
	if err := qb.Subscribe("reloaded", func([]byte) error { b.Add(1); return nil }); err != nil {
		t.Fatal(err)
	}

	if err := qa.Publish(context.Background(), "reloaded", []byte(`{"instance_id":"a"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	waitFor(t, 10*time.Second, func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestRedisQueue_Names(t *testing.T) {
	q := &RedisQueue{config: RedisConfig{Stream: "availmon", Consumer: "host-1"}}
	if got := q.streamName("availability.reloaded"); got != "availmon:availability.reloaded" {
		t.Errorf("unexpected stream name %q", got)
	}
	if got := q.groupName(); got != "availmon-host-1" {
		t.Errorf("unexpected group name %q", got)
	}
}
