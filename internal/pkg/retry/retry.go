// Package retry re-runs operations that lost an optimistic or row-lock race.
// Only errs.ErrConcurrentModification is retried; every other error is returned
// on the first occurrence.
package retry

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultPolicy makes up to five attempts within roughly half a second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     250 * time.Millisecond,
	}
}

// OnConflict runs op until it succeeds, fails with a non-conflict error,
// the attempts are used up or ctx is done. The last error is returned.
func (p Policy) OnConflict(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, attempts-1), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil || errors.Is(err, errs.ErrConcurrentModification) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
