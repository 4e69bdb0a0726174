package redis

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-quiz-service/internal/app"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Controllers live in process; Redis only carries a liveness key per session so
// other instances and operators can see which sessions are active.
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Controller
}

// NewSessionRegistry stores liveness keys in client with the given TTL.
func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Controller),
	}
}

func (r *SessionRegistry) Add(c *app.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[c.ID()] = c
	// best-effort liveness marker
	logLivenessError(c.ID(), r.client.Set(context.Background(), Key(c.ID()), "1", r.ttl).Err())
}

// Get returns the local controller and refreshes its liveness TTL.
func (r *SessionRegistry) Get(id string) (*app.Controller, bool) {
	r.mu.RLock()
	c, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		r.Touch(id)
	}
	return c, ok
}

// Touch refreshes the liveness TTL of a session; called on every client command.
func (r *SessionRegistry) Touch(id string) {
	if r.ttl <= 0 {
		return
	}
	logLivenessError(id, r.client.Expire(context.Background(), Key(id), r.ttl).Err())
}

func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	logLivenessError(id, r.client.Del(context.Background(), Key(id)).Err())
}

func logLivenessError(id string, err error) {
	if err != nil {
		slog.Warn("session liveness update failed", "session", id, "error", err)
	}
}

// Active counts live session keys across all instances sharing the Redis database.
func (r *SessionRegistry) Active(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

const keyPrefix = "trivia:session:"

// Key is the liveness key of a session.
func Key(id string) string {
	return keyPrefix + id
}
