package strategy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

func orderRequest(t *testing.T, metadata map[string]any) *domain.PaymentRequest {
	t.Helper()
	req, err := domain.NewPaymentRequest(decimal.RequireFromString("150.75"), "USD", "ORDER-1", metadata)
	require.NoError(t, err)
	return req
}

func TestBuiltinStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy strategy.Strategy
		wantName string
		wantTxID string
		wantFee  string
		wantMsg  string
	}{
		{
			name:     "credit card",
			strategy: strategy.NewCreditCardStrategy(strategy.WithoutLatency()),
			wantName: "CreditCardStrategy",
			wantTxID: "CC-ORDER-1",
			wantFee:  "3.015",
			wantMsg:  "Credit card payment processed successfully",
		},
		{
			name:     "paypal",
			strategy: strategy.NewPayPalStrategy(strategy.WithoutLatency()),
			wantName: "PayPalStrategy",
			wantTxID: "PP-ORDER-1",
			wantFee:  "4.5225",
			wantMsg:  "PayPal payment processed successfully",
		},
		{
			name:     "crypto",
			strategy: strategy.NewCryptoStrategy(strategy.WithoutLatency()),
			wantName: "CryptoStrategy",
			wantTxID: "CR-ORDER-1",
			wantFee:  "0",
			wantMsg:  "Crypto payment processed (pending blockchain confirmation)",
		},
		{
			name:     "bank transfer",
			strategy: strategy.NewBankTransferStrategy(strategy.WithoutLatency()),
			wantName: "BankTransferStrategy",
			wantTxID: "BT-ORDER-1",
			wantFee:  "5",
			wantMsg:  "Bank transfer initiated",
		},
		{
			name:     "wechat pay",
			strategy: strategy.NewWeChatPayStrategy(strategy.WithoutLatency()),
			wantName: "WeChatPayStrategy",
			wantTxID: "WX-ORDER-1",
			wantFee:  "1.5075",
			wantMsg:  "WeChat Pay processed successfully",
		},
	}

	req := orderRequest(t, map[string]any{strategy.WeChatOpenIDKey: "oX8Z5Y1a2b3c"})

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantName, tc.strategy.Name())

			res, err := tc.strategy.Process(context.Background(), req)
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, tc.wantMsg, res.Message)
			assert.Equal(t, tc.wantTxID, res.TransactionID)
			require.NotNil(t, res.Fee)
			assert.True(t, res.Fee.Equal(decimal.RequireFromString(tc.wantFee)), "fee = %s, want %s", res.Fee, tc.wantFee)
			assert.GreaterOrEqual(t, res.ProcessingTime, time.Duration(0))
		})
	}
}

func TestWeChatPay_MissingOpenID(t *testing.T) {
	s := strategy.NewWeChatPayStrategy(strategy.WithLatency(200 * time.Millisecond))

	cases := map[string]map[string]any{
		"nil metadata": nil,
		"key absent":   {"user_id": "user_123"},
	}

	for name, md := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := s.Process(context.Background(), orderRequest(t, md))
			require.NoError(t, err, "a missing OpenID is a business failure, not a fault")
			assert.False(t, res.Success)
			assert.Equal(t, "WeChat OpenID is required", res.Message)
			assert.Empty(t, res.TransactionID)
			assert.Nil(t, res.Fee)
			assert.Less(t, res.ProcessingTime, 50*time.Millisecond, "validation must happen before the provider round trip")
		})
	}
}

func TestWeChatPay_OpenIDOnlyNeedsToBePresent(t *testing.T) {
	s := strategy.NewWeChatPayStrategy(strategy.WithoutLatency())

	res, err := s.Process(context.Background(), orderRequest(t, map[string]any{strategy.WeChatOpenIDKey: ""}))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "WX-ORDER-1", res.TransactionID)
}

func TestSimulatedLatency(t *testing.T) {
	s := strategy.NewPayPalStrategy(strategy.WithLatency(20 * time.Millisecond))

	res, err := s.Process(context.Background(), orderRequest(t, nil))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.ProcessingTime, 20*time.Millisecond)
}

func TestSimulatedLatency_HonoursCancellation(t *testing.T) {
	s := strategy.NewCryptoStrategy(strategy.WithLatency(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := s.Process(ctx, orderRequest(t, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, res.Success)
	assert.Less(t, time.Since(start), time.Second)
}

func TestProcess_NilRequest(t *testing.T) {
	for method, s := range strategy.Builtins(strategy.WithoutLatency()) {
		_, err := s.Process(context.Background(), nil)
		assert.ErrorIs(t, err, strategy.ErrNilRequest, "method %s", method)
	}
}

func TestDefaultsAndBuiltins(t *testing.T) {
	defaults := strategy.Defaults()
	assert.Len(t, defaults, 4)
	for _, m := range []domain.Method{domain.CreditCard, domain.PayPal, domain.Crypto, domain.BankTransfer} {
		assert.Contains(t, defaults, m)
	}
	assert.NotContains(t, defaults, domain.WeChatPay)

	builtins := strategy.Builtins()
	assert.Len(t, builtins, 5)
	assert.Equal(t, "WeChatPayStrategy", builtins[domain.WeChatPay].Name())
}
