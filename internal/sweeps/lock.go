package sweeps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked indicates another instance holds the sweep lock.
var ErrLocked = errors.New("sweep already running elsewhere")

// releaseScript deletes the lock only while it still holds our token.
// KEYS[1] = lock key
// ARGV[1] = owner token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker grants exclusive, expiring leases on sweep names.
type Locker interface {
	Acquire(ctx context.Context, name string) (release func(), err error)
}

// RedisLocker implements Locker with SET NX PX and a compare-and-delete release.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a Redis-backed Locker. Leases expire after ttl so a
// crashed holder never blocks later runs.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, prefix: "sweeps:lock:", ttl: ttl}
}

// Acquire takes the lease for name or returns ErrLocked.
func (l *RedisLocker) Acquire(ctx context.Context, name string) (func(), error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{key}, token)
	}, nil
}

type localLocker struct{}

// Acquire always succeeds. Each sweep is idempotent per record, so a single
// instance without Redis runs unguarded.
func (localLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}
