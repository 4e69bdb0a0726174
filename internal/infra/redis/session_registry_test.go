package redis

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/infra/memory"
)

func TestSessionRegistrySetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)

	registry.Add(newController("s1"))
	registry.Add(newController("s2"))
	if !mr.Exists("trivia:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("trivia:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	active, err := registry.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != 2 {
		t.Fatalf("expected 2 active sessions, got %d", active)
	}

	registry.Remove("s1")
	if mr.Exists("trivia:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := registry.Get("s1"); ok {
		t.Fatalf("expected session removed locally")
	}
}

func TestSessionRegistryGetRefreshesTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)
	registry.Add(newController("s1"))

	mr.FastForward(50 * time.Second)
	if _, ok := registry.Get("s1"); !ok {
		t.Fatalf("expected session present")
	}
	if ttl := mr.TTL("trivia:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed to 1m, got %v", ttl)
	}
}

func TestSessionRegistryTouchKeepsSessionActive(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	registry := NewSessionRegistry(client, time.Minute)
	registry.Add(newController("s1"))

	mr.FastForward(50 * time.Second)
	registry.Touch("s1")
	mr.FastForward(50 * time.Second)

	active, err := registry.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected touched session to stay active, got %d", active)
	}
}

func TestSessionRegistryLogsRedisFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	registry := NewSessionRegistry(client, time.Minute)
	mr.Close()

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	registry.Add(newController("s1"))
	registry.Touch("s1")
	registry.Remove("s1")

	if n := strings.Count(buf.String(), "session liveness update failed"); n != 3 {
		t.Fatalf("expected 3 logged failures, got %d:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "session=s1") {
		t.Fatalf("expected session attribute, got %s", buf.String())
	}
}

func newController(id string) *app.Controller {
	return app.NewController(id, app.DefaultConfig(), memory.NewStaticQuestionSource(nil))
}
