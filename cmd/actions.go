package cmd

import (
	"context"
	"os"

	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/session"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and move it to Sepolia",
	Long: `Request account access from the wallet and switch it to Sepolia.

If the wallet does not know Sepolia it is asked to add it first. What
happens when the switch fails is set by switch_failure_policy:
  abort    report the failure and stay unconnected (default)
  proceed  report connected anyway with a warning`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd.Context(), func(ctx context.Context, c *session.Controller) error {
			return c.Connect(ctx)
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the FundMe contract balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.QueryTimeout)
		defer cancel()
		return runAction(ctx, func(ctx context.Context, c *session.Controller) error {
			_, err := c.Balance(ctx)
			return err
		})
	},
}

var fundCmd = &cobra.Command{
	Use:   "fund <amount>",
	Short: "Fund the contract with <amount> ether",
	Long: `Send <amount> ether to the FundMe contract and wait for one confirmation.

The amount is a decimal ether value with up to 18 fractional digits.

Examples:
  fundme fund 0.01
  fundme fund 1.5 --provider local --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := args[0]
		return runAction(cmd.Context(), func(ctx context.Context, c *session.Controller) error {
			_, err := c.Fund(ctx, amount)
			return err
		})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw the contract balance (owner only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAction(cmd.Context(), func(ctx context.Context, c *session.Controller) error {
			_, err := c.Withdraw(ctx)
			return err
		})
	},
}

// runAction detects the wallet and runs one controller action, printing
// its labels and notifications to stdout.
func runAction(ctx context.Context, fn func(context.Context, *session.Controller) error) error {
	sink := ui.NewConsoleSink(os.Stdout, isTerminal(os.Stdout))
	p := detectProvider(ctx, sink.Guard(consoleApprover()))
	if p != nil {
		defer provider.Release(p)
	}

	c, err := newController(runCfg, p, sink)
	if err != nil {
		return err
	}
	if err := fn(ctx, c); err != nil {
		return errReported
	}
	return nil
}
