package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease serializes redraw passes across processes.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RedisLease is a SET NX PX lock owned by a random token.
type RedisLease struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

// releaseScript deletes the key only while we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisLease builds a lease on key held for at most ttl.
func NewRedisLease(client *redis.Client, key string, ttl time.Duration) *RedisLease {
	return &RedisLease{client: client, key: key, ttl: ttl, token: uuid.NewString()}
}

// Acquire reports whether this process now holds the lease.
func (l *RedisLease) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
}

// Release gives the lease up if it is still ours.
func (l *RedisLease) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}

type localLease struct{}

func (localLease) Acquire(context.Context) (bool, error) { return true, nil }
func (localLease) Release(context.Context) error         { return nil }
