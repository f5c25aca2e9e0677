// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package locks provides the per-user lock that serialises credential
// refreshes. A single server instance uses an in-process keyed mutex;
// several instances sharing one database coordinate through a Redis lease.
package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/shift-calendar/internal/config"
	"github.com/MKhiriev/shift-calendar/internal/logger"
)

// ErrLockNotAcquired is returned when ctx ends before the lock is obtained.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Unlock releases a lock obtained from [Locker.Lock]. It is safe to call once.
type Unlock func()

// Locker hands out mutually exclusive locks by key.
type Locker interface {
	// Lock blocks until the lock for key is held or ctx is done, in which
	// case the error wraps both [ErrLockNotAcquired] and ctx.Err().
	Lock(ctx context.Context, key string) (Unlock, error)

	// Close releases the connection behind the locker, if any.
	Close() error
}

// NewLocker returns a Redis-backed locker when a Redis address is
// configured and an in-process one otherwise.
func NewLocker(ctx context.Context, redisCfg config.Redis, ttl time.Duration, log *logger.Logger) (Locker, error) {
	if redisCfg.Address == "" {
		log.Info().Msg("using in-process refresh locks")
		return NewMemoryLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Address,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("address", redisCfg.Address).Msg("using redis refresh locks")
	return NewRedisLocker(client, ttl, log), nil
}

func notAcquired(ctx context.Context, key string) error {
	return fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
}
