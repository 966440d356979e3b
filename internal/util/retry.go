package util

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// Retry is a bounded, fixed delay retry policy.
type Retry struct {
	Attempts int
	Delay    time.Duration
	// Sleep waits between two attempts, defaults to SleepContext
	Sleep func(ctx context.Context, d time.Duration) error
}

// SleepContext blocks for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Until evaluates predicate up to r.Attempts times, waiting r.Delay in between.
// It returns the number of attempts used. A predicate error aborts immediately,
// running out of attempts yields an error wrapping ErrRetriesExhausted.
func (r Retry) Until(ctx context.Context, predicate func(attempt int) (bool, error)) (int, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		done, err := predicate(attempt)
		if err != nil {
			return attempt, err
		}
		if done {
			return attempt, nil
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, r.Delay); err != nil {
			return attempt, err
		}
	}

	return attempts, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, attempts)
}
