package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker provides a cross-process lock per resource.
type Locker interface {
	// Acquire blocks until the lock for key is held or ctx ends. The returned
	// release func is safe to call once the lock has expired.
	Acquire(ctx context.Context, key string) (release func(context.Context) error, err error)
}

// errLockHeld is returned by a single acquisition attempt while another holder owns the key.
var errLockHeld = errors.New("lock held")

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX and a token-checked release.
type RedisLocker struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

// NewRedisLocker returns a locker whose locks expire after ttl, so a crashed holder
// cannot block a resource forever.
func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{rdb: rdb, prefix: "lock:parse:", ttl: ttl, poll: 100 * time.Millisecond}
}

// Acquire implements Locker.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	token := uuid.NewString()
	k := l.prefix + key
	try := func() error {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockHeld
		}
		return nil
	}
	bo := backoff.WithContext(backoff.NewConstantBackOff(l.poll), ctx)
	if err := backoff.Retry(try, bo); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("op=orchestrator.lock: %w", err)
	}
	return func(rctx context.Context) error {
		return releaseScript.Run(rctx, l.rdb, []string{k}, token).Err()
	}, nil
}
