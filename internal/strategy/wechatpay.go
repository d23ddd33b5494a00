package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourorg/payment-strategy/internal/domain"
)

const (
	weChatPayLatency = 200 * time.Millisecond

	// WeChatOpenIDKey is the metadata key WeChat Pay requires on every request.
	WeChatOpenIDKey = "wechat_openid"
)

var weChatPayFeeRate = decimal.RequireFromString("0.01")

// WeChatPayStrategy is a wallet-style method: it needs the payer's OpenID in
// the request metadata and charges a 1% fee.
type WeChatPayStrategy struct {
	latency time.Duration
}

func NewWeChatPayStrategy(opts ...Option) *WeChatPayStrategy {
	return &WeChatPayStrategy{latency: resolveLatency(weChatPayLatency, opts)}
}

func (s *WeChatPayStrategy) Name() string {
	return "WeChatPayStrategy"
}

// Process fails fast, before contacting the provider, when the OpenID key is
// absent from the metadata. Its value is passed through unchecked.
func (s *WeChatPayStrategy) Process(ctx context.Context, req *domain.PaymentRequest) (domain.PaymentResult, error) {
	if req == nil {
		return domain.PaymentResult{}, ErrNilRequest
	}
	log.Printf("[WeChatPay] Processing payment of %s %s", req.Amount(), req.Currency())

	startTime := time.Now()
	if _, ok := req.MetadataValue(WeChatOpenIDKey); !ok {
		return domain.Failed("WeChat OpenID is required", time.Since(startTime)), nil
	}

	if err := simulateLatency(ctx, s.latency); err != nil {
		return domain.Failed("WeChat Pay interrupted", time.Since(startTime)),
			fmt.Errorf("wechat pay: %w", err)
	}

	return domain.Succeeded(
		"WeChat Pay processed successfully",
		"WX-"+req.Reference(),
		req.Amount().Mul(weChatPayFeeRate),
		time.Since(startTime),
	), nil
}
