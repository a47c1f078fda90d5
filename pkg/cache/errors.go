package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the Redis backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks a backend failure worth another attempt, such as a
// refused connection while Redis is starting.
type RetryableError struct{ Err error }

// Retryable marks err for RetryWithBackoff. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryDelay is the pause before the second attempt; it doubles after that.
var retryDelay = 200 * time.Millisecond

const retryAttempts = 3

// RetryWithBackoff calls fn until it succeeds, returns an unmarked error, or
// retryAttempts calls have failed. NewRedisCache uses it for the startup ping.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for delay, n := retryDelay, 1; err != nil && IsRetryable(err) && n < retryAttempts; delay, n = delay*2, n+1 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
