package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Policy bounds how often and how fast an operation is retried. Zero fields
// fall back to defaults suitable for polite page fetching.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 200 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 2 * time.Second
	}
	if p.Jitter <= 0 {
		p.Jitter = 100 * time.Millisecond
	}
	return p
}

// Permanent marks err as non-retryable: Do gives up immediately instead of
// burning the remaining attempts on a failure that cannot change.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do runs fn until it succeeds or the policy's attempts are exhausted,
// sleeping with doubled, jittered delays in between. Context cancellation
// interrupts the wait; an error wrapped with Permanent is returned without
// further attempts.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	policy = policy.withDefaults()

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			var permanent *permanentError
			if errors.As(err, &permanent) {
				break
			}
			if attempt == policy.Attempts-1 {
				break
			}
			sleep := delay + time.Duration(rand.Int63n(int64(policy.Jitter)))
			if sleep > policy.MaxDelay {
				sleep = policy.MaxDelay
			}
			timer := time.NewTimer(sleep)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if delay > policy.MaxDelay {
				delay = policy.MaxDelay
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("retry failed: %w", lastErr)
}
