package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

const payPalLatency = 300 * time.Millisecond

var payPalFeeRate = decimal.RequireFromString("0.03")

// PayPalStrategy charges a 3% fee.
type PayPalStrategy struct {
	latency time.Duration
}

func NewPayPalStrategy(opts ...Option) *PayPalStrategy {
	return &PayPalStrategy{latency: resolveLatency(payPalLatency, opts)}
}

func (s *PayPalStrategy) Name() string {
	return "PayPalStrategy"
}

func (s *PayPalStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if req == nil {
		return domain.PaymentResult{}, ErrNilRequest
	}
	log.Printf("[PayPal] Processing payment of %s %s", req.Amount(), req.Currency())

	startTime := time.Now()
	if err := simulateLatency(ctx, s.latency); err != nil {
		return domain.Failed("PayPal payment interrupted", time.Since(startTime)),
			fmt.Errorf("paypal: %w", err)
	}

	return domain.Succeeded(
		"PayPal payment processed successfully",
		"PP-"+req.Reference(),
		req.Amount().Mul(payPalFeeRate),
		time.Since(startTime),
	), nil
}
