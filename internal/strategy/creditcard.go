package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

const creditCardLatency = 500 * time.Millisecond

var creditCardFeeRate = decimal.RequireFromString("0.02")

// CreditCardStrategy charges a 2% fee.
type CreditCardStrategy struct {
	latency time.Duration
}

// NewCreditCardStrategy creates a CreditCardStrategy.
func NewCreditCardStrategy(opts ...Option) *CreditCardStrategy {
	return &CreditCardStrategy{latency: resolveLatency(creditCardLatency, opts)}
}

// Name implements Strategy.
func (s *CreditCardStrategy) Name() string {
	return "CreditCardStrategy"
}

// Process implements Strategy.
func (s *CreditCardStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if req == nil {
		return domain.PaymentResult{}, ErrNilRequest
	}
	log.Printf("[CreditCard] Processing payment of %s %s", req.Amount(), req.Currency())

	startTime := time.Now()
	if err := simulateLatency(ctx, s.latency); err != nil {
		return domain.Failed("Credit card payment interrupted", time.Since(startTime)),
			fmt.Errorf("credit card: %w", err)
	}

	return domain.Succeeded(
		"Credit card payment processed successfully",
		"CC-"+req.Reference(),
		req.Amount().Mul(creditCardFeeRate),
		time.Since(startTime),
	), nil
}
