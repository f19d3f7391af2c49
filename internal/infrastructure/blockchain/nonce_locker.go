package blockchain

import (
	"context"
	"time"

	"blackwallet.backend/pkg/logger"
	"blackwallet.backend/pkg/redis"
	"go.uber.org/zap"
)

// NonceLocker serializes relayer submissions from nonce fetch to broadcast.
type NonceLocker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// MutexLocker is a context-aware in-process lock for single-instance deployments.
type MutexLocker struct {
	sem chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{sem: make(chan struct{}, 1)}
}

func (m *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case m.sem <- struct{}{}:
		return func() { <-m.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// RedisNonceLocker shares the lock between server instances using the same relayer key.
type RedisNonceLocker struct {
	lock *redis.Lock
}

func NewRedisNonceLocker(relayerAddress string, ttl time.Duration) *RedisNonceLocker {
	return &RedisNonceLocker{lock: redis.NewLock("relayer:nonce:"+relayerAddress, ttl)}
}

func (r *RedisNonceLocker) Lock(ctx context.Context) (func(), error) {
	release, err := r.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			logger.Warn(ctx, "Relayer nonce lock release failed", zap.Error(err))
		}
	}, nil
}
