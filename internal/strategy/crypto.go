package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

// Blockchain confirmation is the slowest of the simulated providers.
const cryptoLatency = time.Second

// CryptoStrategy settles without a fee; the result is reported as pending
// blockchain confirmation.
type CryptoStrategy struct {
	latency time.Duration
}

func NewCryptoStrategy(opts ...Option) *CryptoStrategy {
	return &CryptoStrategy{latency: resolveLatency(cryptoLatency, opts)}
}

func (s *CryptoStrategy) Name() string {
	return "CryptoStrategy"
}

func (s *CryptoStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if req == nil {
		return domain.PaymentResult{}, ErrNilRequest
	}
	log.Printf("[Crypto] Processing payment of %s %s", req.Amount(), req.Currency())

	startTime := time.Now()
	if err := simulateLatency(ctx, s.latency); err != nil {
		return domain.Failed("Crypto payment interrupted", time.Since(startTime)),
			fmt.Errorf("crypto: %w", err)
	}

	return domain.Succeeded(
		"Crypto payment processed (pending blockchain confirmation)",
		"CR-"+req.Reference(),
		decimal.Zero,
		time.Since(startTime),
	), nil
}
