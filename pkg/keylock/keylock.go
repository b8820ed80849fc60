// Package keylock provides per-key mutual exclusion that hands the lock to
// waiters in the order they arrived.
package keylock

import (
	"context"
	"sync"
)

type entry struct {
	waiters []chan struct{}
}

// Locker is a set of FIFO mutexes indexed by string key. A key with no
// holder and no waiters takes no memory.
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock blocks until the caller holds key or ctx is done. Waiters acquire the
// key strictly in the order Lock was called.
func (l *Locker) Lock(ctx context.Context, key string) error {
	l.mu.Lock()
	e, held := l.entries[key]
	if !held {
		l.entries[key] = &entry{}
		l.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
	}

	l.mu.Lock()
	for i, w := range e.waiters {
		if w == ch {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			l.mu.Unlock()
			return ctx.Err()
		}
	}
	l.mu.Unlock()

	// The lock was handed over while ctx was being cancelled; pass it on.
	l.Unlock(key)
	return ctx.Err()
}

// Unlock releases key, waking the longest waiting caller if any.
func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		panic("keylock: unlock of unlocked key " + key)
	}
	if len(e.waiters) == 0 {
		delete(l.entries, key)
		return
	}
	next := e.waiters[0]
	e.waiters = e.waiters[1:]
	close(next)
}

// Do runs fn while holding key.
func (l *Locker) Do(ctx context.Context, key string, fn func() error) error {
	if err := l.Lock(ctx, key); err != nil {
		return err
	}
	defer l.Unlock(key)
	return fn()
}
