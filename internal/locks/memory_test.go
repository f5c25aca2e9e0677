// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerialisesSameKey(t *testing.T) {
	locker := NewMemoryLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "user:1")
			require.NoError(t, err)
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestMemoryLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewMemoryLocker()

	unlock1, err := locker.Lock(context.Background(), "user:1")
	require.NoError(t, err)
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	unlock2, err := locker.Lock(ctx, "user:2")
	require.NoError(t, err)
	unlock2()
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := NewMemoryLocker()

	unlock, err := locker.Lock(context.Background(), "user:1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "user:1")
	assert.True(t, errors.Is(err, ErrLockNotAcquired))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestMemoryLocker_UnlockIsIdempotentAndCleansUp(t *testing.T) {
	locker := NewMemoryLocker().(*memoryLocker)

	unlock, err := locker.Lock(context.Background(), "user:1")
	require.NoError(t, err)

	unlock()
	unlock()

	assert.Empty(t, locker.entries)

	// the key is usable again
	unlock, err = locker.Lock(context.Background(), "user:1")
	require.NoError(t, err)
	unlock()
}

func TestMemoryLocker_Close(t *testing.T) {
	assert.NoError(t, NewMemoryLocker().Close())
}
