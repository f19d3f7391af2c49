package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotHeld = errors.New("redis lock not held")

// releaseScript deletes the key only when it still holds our token, so a lock
// that expired and was taken by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock is a single-key mutual exclusion lease stored in Redis.
type Lock struct {
	key   string
	ttl   time.Duration
	retry time.Duration
}

// NewLock creates a lock on key. ttl bounds how long a crashed holder can
// block others.
func NewLock(key string, ttl time.Duration) *Lock {
	return &Lock{key: key, ttl: ttl, retry: 50 * time.Millisecond}
}

// Acquire blocks until the lease is obtained or ctx is done. The returned
// release func must be called exactly once.
func (l *Lock) Acquire(ctx context.Context) (func(context.Context) error, error) {
	token := uuid.NewString()
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := SetNX(ctx, l.key, token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func(releaseCtx context.Context) error {
				n, err := releaseScript.Run(releaseCtx, client, []string{l.key}, token).Int64()
				if err != nil {
					return err
				}
				if n == 0 {
					return ErrLockNotHeld
				}
				return nil
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
