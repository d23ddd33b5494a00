package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

const bankTransferLatency = 800 * time.Millisecond

// Flat fee, independent of the amount and currency.
var bankTransferFee = decimal.NewFromInt(5)

// BankTransferStrategy initiates a transfer and charges a flat fee.
type BankTransferStrategy struct {
	latency time.Duration
}

func NewBankTransferStrategy(opts ...Option) *BankTransferStrategy {
	return &BankTransferStrategy{latency: resolveLatency(bankTransferLatency, opts)}
}

func (s *BankTransferStrategy) Name() string {
	return "BankTransferStrategy"
}

func (s *BankTransferStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if req == nil {
		return domain.PaymentResult{}, ErrNilRequest
	}
	log.Printf("[BankTransfer] Processing payment of %s %s", req.Amount(), req.Currency())

	startTime := time.Now()
	if err := simulateLatency(ctx, s.latency); err != nil {
		return domain.Failed("Bank transfer interrupted", time.Since(startTime)),
			fmt.Errorf("bank transfer: %w", err)
	}

	return domain.Succeeded(
		"Bank transfer initiated",
		"BT-"+req.Reference(),
		bankTransferFee,
		time.Since(startTime),
	), nil
}
