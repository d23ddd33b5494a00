package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/registry"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

func newDemoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through listing, paying, late registration and retry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()
			factory, proc := opts.newProcessor(registry.DefaultPopulate(opts.strategyOptions()...))

			fmt.Fprintln(out, "===== Payment strategy demo =====")

			fmt.Fprintln(out, "\nAvailable payment methods:")
			printMethods(out, proc.ListAvailablePaymentMethods())

			order, err := domain.NewPaymentRequest(decimal.RequireFromString("150.75"), "USD", "ORDER-2023-12345", map[string]any{
				"user_id":                "user_789",
				"items":                  []string{"product_A", "service_B"},
				strategy.WeChatOpenIDKey: "oX8Z5Y1a2b3c4d5e6f7g8h9i0j",
			})
			if err != nil {
				return err
			}

			for _, m := range []domain.Method{domain.CreditCard, domain.PayPal} {
				fmt.Fprintf(out, "\nProcessing %s payment:\n", m)
				if err := printResult(out, proc.ProcessPayment(ctx, m, order)); err != nil {
					return err
				}
			}

			fmt.Fprintln(out, "\nRegistering WeChat Pay at runtime:")
			if err := factory.Register(domain.WeChatPay, strategy.NewWeChatPayStrategy(opts.strategyOptions()...)); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nProcessing wechat_pay payment:")
			if err := printResult(out, proc.ProcessPayment(ctx, domain.WeChatPay, order)); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nRetrying a WeChat Pay request without an OpenID:")
			proc.EnableRetry(2)
			missingOpenID, err := domain.NewPaymentRequest(decimal.NewFromInt(200), "USD", "ORDER-2023-54321", map[string]any{
				"user_id": "user_123",
			})
			if err != nil {
				return err
			}
			if err := printResult(out, proc.ProcessPayment(ctx, domain.WeChatPay, missingOpenID)); err != nil {
				return err
			}
			proc.DisableRetry()

			fmt.Fprintln(out, "\nDiscovering strategies:")
			found := registry.Discover(factory.Registry(),
				strategy.NewCryptoStrategy(opts.strategyOptions()...),
				"not a strategy",
			)
			fmt.Fprintf(out, "Auto-registered: %v\n", found)
			return nil
		},
	}
}
