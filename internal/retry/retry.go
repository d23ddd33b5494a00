// Package retry provides a strategy decorator that re-invokes a wrapped
// strategy after failed results, waiting an exponentially growing interval
// between attempts. Faults (non-nil errors) are never retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

// DefaultBackoffUnit is the base interval: attempt k waits unit * 2^k.
const DefaultBackoffUnit = time.Second

// errAttemptFailed marks a failed-but-returned result so the backoff loop
// schedules another attempt.
var errAttemptFailed = errors.New("payment attempt failed")

// Option configures a RetryableStrategy.
type Option func(*RetryableStrategy)

// WithBackoffUnit sets the base backoff interval.
func WithBackoffUnit(d time.Duration) Option {
	return func(r *RetryableStrategy) {
		r.unit = d
	}
}

// OnAttempt registers a hook called after every completed attempt with its
// 1-based number and result. Hooks run in registration order.
func OnAttempt(fn func(attempt int, res domain.PaymentResult)) Option {
	return func(r *RetryableStrategy) {
		if fn != nil {
			r.onAttempt = append(r.onAttempt, fn)
		}
	}
}

// RetryableStrategy wraps a strategy and retries failed results.
type RetryableStrategy struct {
	wrapped    strategy.Strategy
	maxRetries int
	unit       time.Duration
	onAttempt  []func(attempt int, res domain.PaymentResult)
}

// NewRetryableStrategy wraps s so that it is attempted up to maxRetries
// times. Values below 1 are treated as 1.
func NewRetryableStrategy(s strategy.Strategy, maxRetries int, opts ...Option) *RetryableStrategy {
	if s == nil {
		panic("wrapped strategy cannot be nil")
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	r := &RetryableStrategy{
		wrapped:    s,
		maxRetries: maxRetries,
		unit:       DefaultBackoffUnit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements strategy.Strategy.
func (r *RetryableStrategy) Name() string {
	return "Retryable" + r.wrapped.Name()
}

// MaxRetries returns the attempt bound.
func (r *RetryableStrategy) MaxRetries() int {
	return r.maxRetries
}

// Unwrap returns the decorated strategy.
func (r *RetryableStrategy) Unwrap() strategy.Strategy {
	return r.wrapped
}

// Process implements strategy.Strategy.
// The first successful result is returned as is. When every attempt fails the
// result names the attempt count and the last failure message; its
// processing time is not the sum of the attempts.
func (r *RetryableStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	var (
		attempts  int
		fault     error
		lastError string
	)

	operation := func() (domain.PaymentResult, error) {
		attempts++
		log.Printf("Attempt %d of %d with %s", attempts, r.maxRetries, r.wrapped.Name())

		res, err := r.wrapped.Process(ctx, req)
		if err != nil {
			fault = err
			return res, backoff.Permanent(err)
		}
		for _, fn := range r.onAttempt {
			fn(attempts, res)
		}
		if res.Success {
			return res, nil
		}
		lastError = res.Message
		return res, errAttemptFailed
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(r.newBackOff()),
		backoff.WithMaxTries(uint(r.maxRetries)),
		backoff.WithMaxElapsedTime(time.Duration(math.MaxInt64)),
		backoff.WithNotify(func(_ error, next time.Duration) {
			log.Printf("Retry: %s failed attempt %d, next attempt in %s", r.wrapped.Name(), attempts, next)
		}),
	)

	switch {
	case fault != nil:
		return res, fault
	case err == nil:
		return res, nil
	case attempts < r.maxRetries && ctx.Err() != nil:
		return domain.Failed(fmt.Sprintf("Interrupted after %d attempts. Last error: %s", attempts, lastError), 0),
			fmt.Errorf("retry: %w", context.Cause(ctx))
	}

	return domain.Failed(fmt.Sprintf("Failed after %d attempts. Last error: %s", attempts, lastError), 0), nil
}

// newBackOff yields unit*2, unit*4, unit*8, ... without jitter.
func (r *RetryableStrategy) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * r.unit
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	return b
}
