package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks backend connection failures.
var ErrNetwork = errors.New("cache backend unreachable")

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped by Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryAttempts and retryDelay bound RetryWithBackoff. The delay doubles
// after every failed attempt.
var (
	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
)

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or the attempts run out.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryDelay
	var err error
	for i := range retryAttempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}
