// Package circuitbreaker guards payment strategies with per-method circuit
// breakers. A failed result or a fault counts against the method; once the
// breaker opens, requests for that method short-circuit with a failed result
// until the open timeout elapses and a half-open probe succeeds. A cancelled
// call is neutral while the breaker is closed; a cancelled half-open probe
// counts as a failure, since it proves nothing about recovery.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

const (
	defaultFailureThreshold    = 5
	defaultOpenTimeout         = 30 * time.Second
	defaultHalfOpenMaxRequests = 1
)

// Config holds breaker settings shared by every method in a Set.
// Zero values fall back to the defaults.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenMaxRequests is the number of probes allowed while half-open;
	// that many consecutive successes close the breaker.
	HalfOpenMaxRequests uint32
}

// DefaultConfig returns the default breaker settings.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:    defaultFailureThreshold,
		OpenTimeout:         defaultOpenTimeout,
		HalfOpenMaxRequests: defaultHalfOpenMaxRequests,
	}
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold == 0 {
		c.FailureThreshold = defaultFailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = defaultOpenTimeout
	}
	if c.HalfOpenMaxRequests == 0 {
		c.HalfOpenMaxRequests = defaultHalfOpenMaxRequests
	}
	return c
}

// Set lazily creates one breaker per payment method.
type Set struct {
	cfg Config

	mu       sync.Mutex
	breakers map[domain.Method]*gobreaker.TwoStepCircuitBreaker
}

// NewSet creates an empty breaker set.
func NewSet(cfg Config) *Set {
	return &Set{
		cfg:      cfg.withDefaults(),
		breakers: make(map[domain.Method]*gobreaker.TwoStepCircuitBreaker),
	}
}

// Config returns the effective settings.
func (s *Set) Config() Config {
	return s.cfg
}

func (s *Set) breaker(method domain.Method) *gobreaker.TwoStepCircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cb, ok := s.breakers[method]; ok {
		return cb
	}

	threshold := s.cfg.FailureThreshold
	cb := gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        string(method),
		MaxRequests: s.cfg.HalfOpenMaxRequests,
		Timeout:     s.cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("CircuitBreaker: %s changed from %s to %s", name, from, to)
		},
	})
	s.breakers[method] = cb
	return cb
}

// State reports the breaker state for method. Methods that have never been
// called are closed.
func (s *Set) State(method domain.Method) gobreaker.State {
	return s.breaker(method).State()
}

// Counts reports the breaker's internal counters for method.
func (s *Set) Counts(method domain.Method) gobreaker.Counts {
	return s.breaker(method).Counts()
}

// Wrap returns inner guarded by the breaker for method.
func (s *Set) Wrap(method domain.Method, inner strategy.Strategy) strategy.Strategy {
	if inner == nil {
		panic("circuitbreaker: wrapped strategy cannot be nil")
	}
	return &guardedStrategy{
		method: method,
		inner:  inner,
		cb:     s.breaker(method),
	}
}

type guardedStrategy struct {
	method domain.Method
	inner  strategy.Strategy
	cb     *gobreaker.TwoStepCircuitBreaker
}

func (g *guardedStrategy) Name() string {
	return g.inner.Name()
}

func (g *guardedStrategy) Unwrap() strategy.Strategy {
	return g.inner
}

func (g *guardedStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentResult{}, err
	}

	done, err := g.cb.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Printf("CircuitBreaker: rejecting %s request %s: %v", g.method, reference(req), err)
			return domain.Failed(fmt.Sprintf("Circuit open for %s", g.method), 0), nil
		}
		return domain.PaymentResult{}, err
	}

	defer func() {
		if e := recover(); e != nil {
			done(false)
			panic(e)
		}
	}()

	res, err := g.inner.Process(ctx, req)
	switch {
	case errors.Is(err, context.Canceled):
		// Half-open grants no further probes until done is called.
		if g.cb.State() == gobreaker.StateHalfOpen {
			done(false)
		}
	case err != nil:
		done(false)
	default:
		done(res.Success)
	}
	return res, err
}

func reference(req *domain.PaymentRequest) string {
	if req == nil {
		return "<nil>"
	}
	return req.Reference()
}
