package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn up to attempts times, sleeping between failures, and returns
// the last error once attempts are exhausted. retryable decides whether an
// error is worth another attempt; nil means every error is.
func Retry(ctx context.Context, name string, attempts int, sleep time.Duration, retryable func(error) bool, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		Debug("retrying after failure", map[string]any{"operation": name, "attempt": i + 1, "error": err.Error()})
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", name, ctx.Err())
		case <-time.After(sleep):
		}
	}
	return fmt.Errorf("%s: retry attempts exhausted: %w", name, err)
}
