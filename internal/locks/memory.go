// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package locks

import (
	"context"
	"sync"
)

// memoryLocker is a keyed mutex. Entries are reference counted and removed
// once nobody holds or waits for them.
type memoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() Locker {
	return &memoryLocker{entries: make(map[string]*memoryEntry)}
}

func (l *memoryLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	entry := l.acquire(key)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, entry)
		return nil, notAcquired(ctx, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-entry.sem
			l.release(key, entry)
		})
	}, nil
}

func (l *memoryLocker) acquire(key string) *memoryEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		entry = &memoryEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (l *memoryLocker) release(key string, entry *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, key)
	}
}

// Close implements [Locker]; there is nothing to release.
func (l *memoryLocker) Close() error {
	return nil
}
