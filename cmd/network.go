package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/fundme/internal/chain"
	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/rpc"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect the networks the local wallet knows",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and added networks",
	Long: `List the networks the local wallet can switch to. Networks added by
connect are stored in the config and shown as "added".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := walletNetworks(cfg)
		target := chain.Target()

		t := ui.NewTable([]ui.Column{
			{Title: "Chain ID", Width: 10},
			{Title: "Name", Width: 20},
			{Title: "Currency", Width: 9},
			{Title: "Explorer", Width: 32},
			{Title: "Status", Width: 16},
		})
		for i, n := range reg.All() {
			if n.ChainID == cfg.ActiveChainID {
				t.Highlight = i
			}
			t.AddRow(fmt.Sprint(n.ChainID), ui.ChainName(n.Name), n.Currency.Symbol, n.Explorer(), networkStatus(cfg, n))
		}
		if !reg.Has(target.ChainID) {
			t.AddRow(fmt.Sprint(target.ChainID), ui.ChainName(target.Name), target.Currency.Symbol, target.Explorer(), ui.Meta("target, not added"))
		}

		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d network(s) known · active chain %d", len(reg.All()), cfg.ActiveChainID)))
		return nil
	},
}

var networkRPCCmd = &cobra.Command{
	Use:   "rpc [chain-id]",
	Short: "Benchmark a network's RPC endpoints",
	Long: `Ping every RPC endpoint of a network and show which one the local
wallet would use under the configured rpc_algorithm.

The chain ID may be decimal or 0x-prefixed hex and defaults to Sepolia.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		net := chain.Target()
		if len(args) == 1 {
			id, err := chain.ParseChainID(args[0])
			if err != nil {
				return err
			}
			reg := walletNetworks(cfg)
			if !reg.Has(net.ChainID) {
				if err := reg.Add(net); err != nil {
					return err
				}
			}
			if net, err = reg.Get(id); err != nil {
				return fmt.Errorf("chain %d: %w (see fundme network list)", id, err)
			}
		}

		fmt.Printf("%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %s RPCs...", net.Name)))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		results := rpc.BenchmarkEVM(ctx, net.RPCURLs)

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 40},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 10},
		})
		for _, r := range results {
			if r.Err != nil {
				t.AddRow(r.URL, "-", "-", ui.Err("down"))
				continue
			}
			t.AddRow(r.URL, fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprint(r.BlockNumber), ui.Success("healthy"))
		}
		fmt.Println(t.Render())

		algo := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		best, err := rpc.NewPicker(algo).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			fmt.Println(ui.Warn(err.Error()))
			return nil
		}
		fmt.Println(ui.Success(fmt.Sprintf("Selected (%s): %s", algo, best.URL)))
		return nil
	},
}

// walletNetworks is what the local wallet knows: the built-in networks
// plus the ones connect added.
func walletNetworks(c *config.Config) *chain.Registry {
	reg := chain.NewDefaultRegistry()
	for _, n := range c.Networks {
		if err := reg.Add(n); err != nil {
			fmt.Println(ui.Warn(fmt.Sprintf("Ignoring stored network %d: %v", n.ChainID, err)))
		}
	}
	return reg
}

func networkStatus(c *config.Config, n chain.Network) string {
	var tags []string
	if n.ChainID == c.ActiveChainID {
		tags = append(tags, "active")
	}
	if n.ChainID == chain.Sepolia.ChainID {
		tags = append(tags, "target")
	}
	for _, added := range c.Networks {
		if added.ChainID == n.ChainID {
			tags = append(tags, "added")
			break
		}
	}
	return strings.Join(tags, ", ")
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkRPCCmd)
}
