package batch

import (
	"context"
	"time"

	"github.com/fwojciec/manparse"
)

// FetchFunc is the signature for a source fetch.
type FetchFunc func(ctx context.Context, name string, section int) (*manparse.Fetched, error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 250ms, 500ms, 1s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}
}

// FetchWithRetry calls fetch until it succeeds, retrying after each delay in
// delays. ENOTFOUND is final and never retried.
func FetchWithRetry(ctx context.Context, name string, section int, fetch FetchFunc, delays []time.Duration) (*manparse.Fetched, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		f, err := fetch(ctx, name, section)
		if err == nil {
			return f, nil
		}
		lastErr = err

		if manparse.ErrorCode(err) == manparse.ENOTFOUND || attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
