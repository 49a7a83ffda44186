package catalog

import (
	"context"
	"sync"
)

// KeyLocks provides advisory locks keyed by identity. Unlike a mutex, a
// lock acquired in one goroutine may be released by another, which the
// importer relies on: the resolve stage acquires the identity and the
// apply stage releases it.
type KeyLocks struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewKeyLocks constructs an empty lock table.
func NewKeyLocks() *KeyLocks {
	return &KeyLocks{locks: make(map[string]chan struct{})}
}

// Acquire blocks until the key's lock is free or ctx is cancelled.
func (l *KeyLocks) Acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *KeyLocks) TryAcquire(key string) bool {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the key's lock. Releasing an unheld key is a no-op.
func (l *KeyLocks) Release(key string) {
	l.mu.Lock()
	ch := l.locks[key]
	l.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case <-ch:
	default:
	}
}
