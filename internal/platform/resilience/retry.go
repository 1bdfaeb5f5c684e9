package resilience

import (
	"context"
	"math/rand"
	"time"
)

// Retry runs fn up to cfg.MaxAttempts times with jittered exponential
// backoff. It stops early when fn succeeds, when fn reports the error is not
// retryable, or when ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(ctx context.Context) error) error {
	cfg = NormalizeRetryConfig(cfg)

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay << (attempt - 1)
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}
	// Full jitter keeps retry storms from synchronizing.
	return time.Duration(rand.Int63n(int64(delay)) + 1)
}
