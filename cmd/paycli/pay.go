package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourorg/payment-strategy/internal/domain"
)

func newPayCmd(opts *globalOptions) *cobra.Command {
	var (
		method     string
		amount     string
		currency   string
		reference  string
		meta       []string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Process one payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domain.ParseMethod(method)
			if err != nil {
				return err
			}
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			metadata, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			req, err := domain.NewPaymentRequest(amt, currency, reference, metadata)
			if err != nil {
				return err
			}

			_, proc := opts.newProcessor(builtinPopulate(opts))
			if maxRetries > 0 {
				proc.EnableRetry(maxRetries)
			}

			res := proc.ProcessPayment(cmd.Context(), m, req)
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&method, "method", "", "Payment method (credit_card, paypal, crypto, bank_transfer, wechat_pay)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to charge, e.g. 150.75")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	cmd.Flags().StringVar(&reference, "reference", "", "Merchant order reference")
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "Metadata entry key=value (repeatable)")
	cmd.Flags().IntVar(&maxRetries, "retry", 0, "Retry failed payments up to N attempts (0 disables)")
	_ = cmd.MarkFlagRequired("method")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func parseMetadata(entries []string) (map[string]any, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --meta %q, want key=value", e)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
