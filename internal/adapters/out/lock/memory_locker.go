package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch/internal/core/ports"
)

var _ ports.Locker = (*MemoryLocker)(nil)

// MemoryLocker is the single-instance Locker used when Redis is not configured.
type MemoryLocker struct {
	mu    sync.Mutex
	clock ports.Clock
	held  map[string]heldLock
	seq   uint64
}

type heldLock struct {
	owner     uint64
	expiresAt time.Time
}

func NewMemoryLocker(clock ports.Clock) *MemoryLocker {
	return &MemoryLocker{clock: clock, held: make(map[string]heldLock)}
}

func (l *MemoryLocker) TryLock(
	_ context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	if ttl <= 0 {
		return nil, false, fmt.Errorf("lock %s: ttl %s is not positive", key, ttl)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if current, ok := l.held[key]; ok && now.Before(current.expiresAt) {
		return nil, false, nil
	}

	l.seq++
	owner := l.seq
	l.held[key] = heldLock{owner: owner, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()

		current, ok := l.held[key]
		if !ok || current.owner != owner {
			return fmt.Errorf("release lock %s: %w", key, ErrLockLost)
		}
		delete(l.held, key)
		return nil
	}
	return release, true, nil
}
