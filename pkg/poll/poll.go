package poll

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrNotReady is returned by Until when the backoff gives up before check
// reported completion.
var ErrNotReady = errors.New("condition not reached")

// CheckFunc reports whether the awaited condition holds. A non-nil error stops
// polling immediately and is returned to the caller unchanged.
type CheckFunc func(ctx context.Context) (bool, error)

// Until calls check, waiting between calls as dictated by backoff, until check
// reports done, fails, or ctx is cancelled. The first call happens right away.
func Until(ctx context.Context, backoff retry.Backoff, check CheckFunc) error {
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		done, err := check(ctx)
		if err != nil {
			return err
		}
		if !done {
			return retry.RetryableError(ErrNotReady)
		}
		return nil
	})
}

// Fixed waits the same interval between every attempt and never gives up.
func Fixed(interval time.Duration) retry.Backoff {
	return retry.BackoffFunc(func() (time.Duration, bool) {
		return interval, false
	})
}

// Immediate never waits. Used by tests to poll without real delays.
func Immediate() retry.Backoff {
	return Fixed(0)
}
