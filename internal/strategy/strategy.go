// Package strategy defines the capability every payment method implements
// and contains the built-in variants (credit card, PayPal, crypto, bank
// transfer and WeChat Pay). Provider calls are simulated: each variant
// waits for a configurable latency, computes its fee and synthesizes a
// transaction ID by prefixing the request reference with a method tag.
package strategy

import (
	"context"
	"errors"
	"time"

	"github.com/yourorg/payment-strategy/internal/domain"
)

// ErrNilRequest is returned when a strategy is invoked without a request.
var ErrNilRequest = errors.New("payment request cannot be nil")

// Strategy is implemented by each payment method.
type Strategy interface {
	// Process handles one payment request. A business failure is reported as
	// a PaymentResult with Success=false and a nil error; a non-nil error is a
	// fault (cancelled context, programming error) and is never retried.
	Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error)

	// Name returns the strategy name (e.g. "CreditCardStrategy").
	Name() string
}

// Option tunes a built-in strategy.
type Option func(*settings)

type settings struct {
	latency    time.Duration
	latencySet bool
}

// WithLatency overrides the simulated provider latency. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(s *settings) {
		s.latency = d
		s.latencySet = true
	}
}

// WithoutLatency disables the simulated provider latency.
func WithoutLatency() Option {
	return WithLatency(0)
}

func resolveLatency(def time.Duration, opts []Option) time.Duration {
	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}
	if s.latencySet {
		return s.latency
	}
	return def
}

// simulateLatency stands in for the provider round trip.
func simulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Defaults returns the strategies every registry starts with.
func Defaults(opts ...Option) map[domain.Method]Strategy {
	return map[domain.Method]Strategy{
		domain.CreditCard:   NewCreditCardStrategy(opts...),
		domain.PayPal:       NewPayPalStrategy(opts...),
		domain.Crypto:       NewCryptoStrategy(opts...),
		domain.BankTransfer: NewBankTransferStrategy(opts...),
	}
}

// Builtins returns every built-in strategy, including the ones that are
// not registered by default.
func Builtins(opts ...Option) map[domain.Method]Strategy {
	all := Defaults(opts...)
	all[domain.WeChatPay] = NewWeChatPayStrategy(opts...)
	return all
}
