package jobs

import (
	"context"
	"fmt"
	"time"

	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/redis"
	"go.uber.org/zap"
)

const (
	rolloverLockKey    = "rollover:spending:lock"
	rolloverDonePrefix = "rollover:spending:done:"
)

// RedisRolloverGuard shares rollover state between server instances. The
// lock serializes attempts; the per-day marker is written only after a
// successful rollover, so a holder that crashes mid-run leaves the day open.
type RedisRolloverGuard struct {
	lock    *redis.Lock
	doneTTL time.Duration
}

func NewRedisRolloverGuard(lockTTL time.Duration) *RedisRolloverGuard {
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &RedisRolloverGuard{
		lock:    redis.NewLock(rolloverLockKey, lockTTL),
		doneTTL: 48 * time.Hour,
	}
}

func (g *RedisRolloverGuard) RunOnce(ctx context.Context, day string, roll func(context.Context) error) (bool, error) {
	release, err := g.lock.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire rollover lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "Rollover lock release failed", zap.Error(err))
		}
	}()

	key := rolloverDonePrefix + day
	if _, err := redis.Get(ctx, key); err == nil {
		return false, nil
	} else if !redis.IsNil(err) {
		return false, fmt.Errorf("read rollover marker: %w", err)
	}

	if err := roll(ctx); err != nil {
		return false, err
	}

	if err := redis.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), g.doneTTL); err != nil {
		logger.Error(ctx, "Rollover done but marker not written", zap.String("day", day), zap.Error(err))
	}
	return true, nil
}
