// Package retry provides a bounded-retry-with-backoff combinator for
// fallible remote calls, independent of which remote store is behind
// them. It is a thin parameterization of failsafe-go retry policies.
package retry

import (
	"context"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
)

// Policy describes how a call is retried.
type Policy struct {
	// MaxAttempts is the total number of tries including the first.
	MaxAttempts int
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the grown delay.
	MaxDelay time.Duration
	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64
	// RetryIf limits retries to matching errors. Nil retries any error.
	RetryIf func(error) bool
}

// DefaultPolicy retries up to 8 attempts with 1s base delay growing by
// a factor of 1.6, capped at 30s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   8,
		BaseDelay:     1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 1.6,
	}
}

func build[T any](p Policy) retrypolicy.RetryPolicy[T] {
	b := retrypolicy.Builder[T]().ReturnLastFailure()
	if p.MaxAttempts > 0 {
		b = b.WithMaxAttempts(p.MaxAttempts)
	}
	if p.BaseDelay > 0 {
		maxDelay := p.MaxDelay
		if maxDelay < p.BaseDelay {
			maxDelay = p.BaseDelay
		}
		factor := p.BackoffFactor
		if factor < 1 {
			factor = 2
		}
		b = b.WithBackoffFactor(p.BaseDelay, maxDelay, float32(factor))
	}
	if p.RetryIf != nil {
		b = b.HandleIf(func(_ T, err error) bool {
			return err != nil && p.RetryIf(err)
		})
	}
	return b.Build()
}

// Get runs fn under the policy and returns its result. The context
// cancels waiting between attempts.
func Get[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	return failsafe.NewExecutor[T](build[T](p)).WithContext(ctx).Get(fn)
}

// Do runs fn under the policy.
func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := Get(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
