package retry

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrTooManyAttempts = errors.New("too many retry attempts")

// Callable is retried until it succeeds, returns a non-retryable error,
// or the attempt budget runs out.
type Callable func(attempt int) error

type retryableError struct {
	error
	attempt int
}

// Retryable marks an error as transient so the retry loop keeps going.
// A plain error returned by a Callable aborts the loop immediately.
func Retryable(err error, attempt int) error {
	if err == nil {
		return nil
	}

	return &retryableError{error: err, attempt: attempt}
}

// Incremental retries cb with a linearly growing delay: step after the
// first failure, 2*step after the second, and so on up to maxAttempts.
func Incremental(ctx context.Context, step time.Duration, maxAttempts int, cb Callable) error {
	delay := time.Duration(0)

	for attempt := 1; ; attempt++ {
		err := cb(attempt)
		if err == nil {
			return nil
		}

		if _, ok := err.(*retryableError); !ok {
			return errors.Wrapf(err, "attempt %d failed", attempt)
		}

		if attempt >= maxAttempts {
			return errors.Wrapf(ErrTooManyAttempts, "gave up after %d attempts: %s", attempt, err)
		}

		delay += step

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
