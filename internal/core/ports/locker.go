package ports

import (
	"context"
	"time"
)

// Locker provides short-lived mutual exclusion across instances.
type Locker interface {
	// TryLock acquires key for at most ttl. ok is false when someone else holds it.
	// The returned release function is safe to call once the lock was acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}
