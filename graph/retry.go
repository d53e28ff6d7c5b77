package graph

import (
	"context"
	"time"
)

// BackoffStrategy defines different backoff strategies
type BackoffStrategy int

const (
	FixedBackoff BackoffStrategy = iota
	ExponentialBackoff
	LinearBackoff
)

// RetryPolicy defines how to handle node failures
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one. Negative
	// values are treated as zero.
	MaxRetries int

	// Backoff selects how the delay grows between attempts.
	Backoff BackoffStrategy

	// BaseDelay is the delay unit, default 1s.
	BaseDelay time.Duration

	// MaxDelay caps a single delay. Zero means no cap.
	MaxDelay time.Duration

	// Retryable reports whether err should be retried. Nil retries everything.
	Retryable func(err error) bool
}

// DefaultRetryPolicy returns a policy with two exponential retries.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxRetries: 2,
		Backoff:    ExponentialBackoff,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
	}
}

// delay calculates the delay before the retry following attempt (0-based).
func (p *RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}

	var d time.Duration
	switch p.Backoff {
	case ExponentialBackoff:
		// 1x, 2x, 4x, 8x, ...
		d = base * time.Duration(1<<attempt)
	case LinearBackoff:
		// 1x, 2x, 3x, 4x, ...
		d = base * time.Duration(attempt+1)
	default:
		d = base
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func (p *RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// runWithRetry executes fn, retrying according to policy. A nil policy runs fn once.
func runWithRetry[S any](ctx context.Context, policy *RetryPolicy, fn func(context.Context, S) (S, error), state S) (S, error) {
	attempts := 1
	if policy != nil {
		attempts = max(policy.MaxRetries, 0) + 1
	}

	var (
		result S
		err    error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err = fn(ctx, state)
		if err == nil {
			return result, nil
		}

		if policy == nil || attempt == attempts-1 || !policy.retryable(err) {
			break
		}

		select {
		case <-time.After(policy.delay(attempt)):
		case <-ctx.Done():
			var zero S
			return zero, ctx.Err()
		}
	}
	return result, err
}
