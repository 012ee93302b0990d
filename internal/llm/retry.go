package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider re-issues a call after transport failures such as rate
// limits or an unreachable provider. A reply that arrived but cannot be
// used is returned as is.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil || attempt == attempts || !retryable(err) {
			return resp, err
		}

		timer := time.NewTimer(r.wait(attempt, err))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !IsContentFailure(err)
}

// wait returns the pause before the next attempt: the provider's
// Retry-After when given, otherwise exponential backoff with 20% jitter.
// Both are capped at MaxWait.
func (r *RetryProvider) wait(attempt int, err error) time.Duration {
	limit := r.config.MaxWait
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		if limit > 0 && rl.RetryAfter > limit {
			return limit
		}
		return rl.RetryAfter
	}

	d := float64(r.config.InitialWait)
	for i := 1; i < attempt; i++ {
		d *= r.config.Multiplier
	}
	if limit > 0 && d > float64(limit) {
		d = float64(limit)
	}
	d *= 0.8 + 0.4*rand.Float64()
	return time.Duration(d)
}
