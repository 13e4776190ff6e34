// Package resilience wraps calls to external systems with exponential-backoff
// retry and a per-call timeout.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/Adithya-Monish-Kumar-K/concordance/pkg/config"
)

const (
	multiplier     = 2.0
	jitterFraction = 0.1
)

// Retry calls fn until it succeeds, cfg.MaxAttempts is reached, or ctx ends.
// Zero fields in cfg fall back to the defaults from config.Default.
func Retry(ctx context.Context, name string, cfg config.RetryConfig, fn func(ctx context.Context) error) error {
	defaults := config.Default().Retry
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaults.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaults.InitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaults.MaxDelay
	}
	logger := slog.Default().With("component", "retry", "operation", name)
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				logger.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
		delay := computeDelay(attempt, cfg)
		logger.Warn("operation failed, retrying", "attempt", attempt, "max_attempts", cfg.MaxAttempts, "error", lastErr, "next_delay", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted during backoff: %w", ctx.Err())
		}
	}
	return fmt.Errorf("all %d attempts failed for %s: %w", cfg.MaxAttempts, name, lastErr)
}

// WithTimeout runs fn under a context that expires after timeout. A
// non-positive timeout runs fn with ctx unchanged.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := fn(timeoutCtx); err != nil {
		if ctx.Err() == nil && timeoutCtx.Err() != nil {
			return fmt.Errorf("%s: %w (limit: %v)", name, err, timeout)
		}
		return err
	}
	return nil
}

func computeDelay(attempt int, cfg config.RetryConfig) time.Duration {
	backoff := float64(cfg.InitialDelay) * math.Pow(multiplier, float64(attempt-1))
	jitter := backoff * jitterFraction * (2*rand.Float64() - 1)
	backoff += jitter
	if backoff > float64(cfg.MaxDelay) {
		backoff = float64(cfg.MaxDelay)
	}
	if backoff < 0 {
		backoff = float64(cfg.InitialDelay)
	}
	return time.Duration(backoff)
}
