package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/payment-strategy/internal/domain"
	"github.com/yourorg/payment-strategy/internal/processor"
	"github.com/yourorg/payment-strategy/internal/registry"
	"github.com/yourorg/payment-strategy/internal/retry"
	"github.com/yourorg/payment-strategy/internal/strategy"
)

type globalOptions struct {
	noLatency   bool
	backoffUnit time.Duration
}

func (o *globalOptions) strategyOptions() []strategy.Option {
	if o.noLatency {
		return []strategy.Option{strategy.WithoutLatency()}
	}
	return nil
}

func (o *globalOptions) newProcessor(populate registry.PopulateFunc) (*registry.Factory, *processor.Processor) {
	factory := registry.NewFactory(populate)
	proc := processor.NewProcessor(factory,
		processor.WithRetryOptions(retry.WithBackoffUnit(o.backoffUnit)))
	return factory, proc
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "paycli",
		Short:         "Process simulated payments with pluggable strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&opts.noLatency, "no-latency", false, "Disable simulated provider latency")
	root.PersistentFlags().DurationVar(&opts.backoffUnit, "backoff-unit", retry.DefaultBackoffUnit, "Base retry backoff; attempt k waits unit*2^k")

	root.AddCommand(newMethodsCmd(opts))
	root.AddCommand(newPayCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	return root
}

func newMethodsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List registered payment methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, proc := opts.newProcessor(builtinPopulate(opts))
			printMethods(cmd.OutOrStdout(), proc.ListAvailablePaymentMethods())
			return nil
		},
	}
}

// builtinPopulate registers every built-in strategy, WeChat Pay included.
func builtinPopulate(opts *globalOptions) registry.PopulateFunc {
	return func(r *registry.Registry) error {
		return r.RegisterAll(strategy.Builtins(opts.strategyOptions()...))
	}
}

func printMethods(w io.Writer, methods map[domain.Method]string) {
	for _, m := range domain.Methods() {
		if name, ok := methods[m]; ok {
			fmt.Fprintf(w, "- %s: %s\n", m, name)
		}
	}
}

func printResult(w io.Writer, res domain.PaymentResult) error {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(out))
	return nil
}
