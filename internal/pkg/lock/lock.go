// Package lock provides per-user serialization of read-then-write pipelines.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockTimeout is returned by WithLock when the user's lock is not acquired in time.
var ErrLockTimeout = errors.New("timed out waiting for user lock")

// userMutex is a one-slot semaphore so waiters can give up on context expiry.
type userMutex struct {
	slot     chan struct{}
	refCount int
}

// UserLock serializes work per user ID. Entries are dropped once nobody holds
// or waits on them, so the map only grows with concurrently active users.
type UserLock struct {
	mu    sync.Mutex
	locks map[int64]*userMutex
}

// NewUserLock creates a new UserLock instance.
func NewUserLock() *UserLock {
	return &UserLock{locks: make(map[int64]*userMutex)}
}

func (ul *UserLock) acquireRef(userID int64) *userMutex {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m, ok := ul.locks[userID]
	if !ok {
		m = &userMutex{slot: make(chan struct{}, 1)}
		ul.locks[userID] = m
	}
	m.refCount++
	return m
}

func (ul *UserLock) releaseRef(userID int64, m *userMutex) {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m.refCount--
	if m.refCount == 0 {
		delete(ul.locks, userID)
	}
}

// Lock blocks until the user's lock is held or ctx is done.
func (ul *UserLock) Lock(ctx context.Context, userID int64) error {
	m := ul.acquireRef(userID)
	select {
	case m.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		ul.releaseRef(userID, m)
		return ctx.Err()
	}
}

// Unlock releases a lock taken by Lock. Unlocking a user that is
// not locked is a no-op.
func (ul *UserLock) Unlock(userID int64) {
	ul.mu.Lock()
	m, ok := ul.locks[userID]
	ul.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-m.slot:
		ul.releaseRef(userID, m)
	default:
	}
}

// IsLocked reports whether some caller currently holds the user's lock.
func (ul *UserLock) IsLocked(userID int64) bool {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	m, ok := ul.locks[userID]
	return ok && len(m.slot) == 1
}

// WithLock runs fn while holding the user's lock. A non-positive timeout
// waits as long as ctx allows. ErrLockTimeout is returned if the lock could
// not be taken in time.
func (ul *UserLock) WithLock(ctx context.Context, userID int64, timeout time.Duration, fn func() error) error {
	lockCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ul.Lock(lockCtx, userID); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrLockTimeout
	}
	defer ul.Unlock(userID)

	return fn()
}
