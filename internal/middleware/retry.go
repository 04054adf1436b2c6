package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/api/googleapi"
)

// DefaultMaxRetries is the default maximum number of attempts for rate-limited calls.
const DefaultMaxRetries = 3

// retryBaseDelay is the first backoff; it doubles on each attempt.
var retryBaseDelay = time.Second

// WithRetry executes fn with exponential backoff while it fails with a rate
// limit error (429, or 403 with a rate-limit reason). All other errors are
// returned immediately.
func WithRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxRetries
	}

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil || !isRateLimited(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		backoff := retryBaseDelay << uint(attempt)
		slog.DebugContext(ctx, "rate limited, backing off", "attempt", attempt+1, "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return err
}

func isRateLimited(err error) bool {
	var googleErr *googleapi.Error
	if !errors.As(err, &googleErr) {
		return false
	}
	return googleErr.Code == 429 || (googleErr.Code == 403 && isRateLimitReason(googleErr))
}
