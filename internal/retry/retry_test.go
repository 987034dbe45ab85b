package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Incremental(t *testing.T) {
	t.Parallel()

	t.Run("succeeds on first attempt", func(t *testing.T) {
		var calls int
		err := Incremental(context.Background(), time.Millisecond, 3, func(attempt int) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries retryable errors until success", func(t *testing.T) {
		var calls int
		err := Incremental(context.Background(), time.Millisecond, 5, func(attempt int) error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("transient"), attempt)
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		var calls int
		err := Incremental(context.Background(), time.Millisecond, 3, func(attempt int) error {
			calls++
			return Retryable(errors.New("transient"), attempt)
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooManyAttempts))
		assert.Equal(t, 3, calls)
	})

	t.Run("plain error aborts immediately", func(t *testing.T) {
		fatal := errors.New("fatal")

		var calls int
		err := Incremental(context.Background(), time.Millisecond, 5, func(attempt int) error {
			calls++
			return fatal
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, fatal))
		assert.Equal(t, 1, calls)
	})

	t.Run("honours context cancellation between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var calls int
		err := Incremental(ctx, 50*time.Millisecond, 10, func(attempt int) error {
			calls++
			cancel()
			return Retryable(errors.New("transient"), attempt)
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Equal(t, 1, calls)
	})
}
