package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBatchInProgress is returned when a trigger arrives while another run holds the lock
var ErrBatchInProgress = errors.New("batch already in progress")

// RunLocker guards batch and analysis runs against overlap
type RunLocker interface {
	// TryLock acquires the lock without waiting. The returned release func must
	// be called when the run finishes. ErrBatchInProgress means another run holds it.
	TryLock(ctx context.Context) (release func(), err error)
}

// LocalLocker is an in-process run-lock
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryLock(ctx context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, ErrBatchInProgress
	}
	return l.mu.Unlock, nil
}

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is a run-lock shared between processes. The key expires after
// ttl so a crashed holder cannot wedge the schedule.
type RedisLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// DefaultLockKey is the redis key holding the batch lock
const DefaultLockKey = "augur:batch:lock"

// NewRedisLocker connects to redisURL, which may be a redis:// URL or a bare host:port
func NewRedisLocker(ctx context.Context, redisURL string, ttl time.Duration) (*RedisLocker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisLockerWithClient(client, DefaultLockKey, ttl), nil
}

func NewRedisLockerWithClient(client *redis.Client, key string, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &RedisLocker{client: client, key: key, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrBatchInProgress
	}
	return func() {
		// The run's context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		releaseScript.Run(releaseCtx, l.client, []string{l.key}, token)
	}, nil
}

// Close releases the redis connection pool
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
