// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package locks

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/shift-calendar/internal/logger"
	"github.com/MKhiriev/shift-calendar/internal/utils"
)

const (
	redisKeyPrefix      = "shiftcal:lock:"
	redisRetryInterval  = 50 * time.Millisecond
	redisReleaseTimeout = 2 * time.Second
	defaultLeaseTTL     = 30 * time.Second
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lease taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisClient is the subset of *redis.Client used by the locker.
type RedisClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// redisLocker takes a SET NX PX lease per key. The lease expires after ttl
// even if the holder crashes.
type redisLocker struct {
	client RedisClient
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisLocker(client RedisClient, ttl time.Duration, log *logger.Logger) Locker {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &redisLocker{client: client, ttl: ttl, logger: log}
}

func (l *redisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := redisKeyPrefix + key
	token := utils.NewID()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, err
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, notAcquired(ctx, key)
		case <-time.After(redisRetryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), redisReleaseTimeout)
			defer cancel()

			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.Warn().Err(err).Str("key", key).Msg("failed to release redis lock")
			}
		})
	}, nil
}

// Close closes the Redis client when it supports closing, as *redis.Client
// does.
func (l *redisLocker) Close() error {
	if closer, ok := l.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
