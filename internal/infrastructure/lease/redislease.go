// Package lease provides the cross-instance sync lease. One engine instance
// holds the lease for a server while a pass runs; others skip that server
// instead of racing it.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"averon/internal/shared/logger"
)

const keyPrefix = "averon:sync:lease:"

// RedisLease implements the sync lease with SET NX and a TTL. A crashed
// holder never wedges the fleet: the key expires and the next pass proceeds.
type RedisLease struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

// NewRedisLease creates a new RedisLease.
func NewRedisLease(client *redis.Client, ttl time.Duration, log logger.Interface) *RedisLease {
	return &RedisLease{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

// Acquire returns false when another instance holds the lease.
func (l *RedisLease) Acquire(ctx context.Context, serverID uint) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey(serverID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease for server %d: %w", serverID, err)
	}
	if !ok {
		l.logger.Debugw("sync lease already held", "server_id", serverID)
	}
	return ok, nil
}

// Release drops the lease so the next pass does not wait out the TTL.
func (l *RedisLease) Release(ctx context.Context, serverID uint) error {
	if err := l.client.Del(ctx, leaseKey(serverID)).Err(); err != nil {
		return fmt.Errorf("release lease for server %d: %w", serverID, err)
	}
	return nil
}

func leaseKey(serverID uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, serverID)
}

// NoopLease always grants the lease. Used when Redis is not configured and a
// single engine instance owns the whole fleet.
type NoopLease struct{}

func NewNoopLease() *NoopLease { return &NoopLease{} }

func (NoopLease) Acquire(ctx context.Context, serverID uint) (bool, error) { return true, nil }
func (NoopLease) Release(ctx context.Context, serverID uint) error         { return nil }
