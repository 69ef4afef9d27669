package cmd

import (
	"context"
	"os"

	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/session"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/Mohsinsiddi/fundme/internal/wallet"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// providerSettings maps config onto detection settings. Networks the local
// wallet adds are saved to store. approver is asked before the local
// wallet acts; it is unused in remote mode.
func providerSettings(c *config.Config, store provider.NetworkStore, mgr *wallet.Manager, approver provider.Approver) provider.Settings {
	return provider.Settings{
		Mode:     provider.Mode(c.Provider),
		Endpoint: c.Endpoint,
		Wallets:  mgr,
		Wallet:   c.Wallet,
		Logger:   log.Logger.With().Str("component", "provider").Logger(),
		Local: []provider.LocalOption{
			provider.WithApprover(approver),
			provider.WithActiveChain(c.ActiveChainID),
			provider.WithAddedNetworks(c.Networks),
			provider.WithNetworkStore(store),
			provider.WithRPCAlgorithm(c.RPCAlgorithm),
		},
	}
}

// detectProvider finds the configured wallet. A nil result is not an
// error: the controller reports the missing wallet on every action.
func detectProvider(ctx context.Context, approver provider.Approver) provider.Provider {
	ctx, cancel := context.WithTimeout(ctx, config.DetectTimeout)
	defer cancel()
	return provider.Detect(ctx, providerSettings(runCfg, cfg, newWalletManager(), approver))
}

// newController binds p to sink with the configured contract and policy.
func newController(c *config.Config, p provider.Provider, sink session.Sink) (*session.Controller, error) {
	policy, err := session.ParseSwitchFailurePolicy(c.SwitchFailurePolicy)
	if err != nil {
		return nil, err
	}
	return session.New(p, sink,
		session.WithSwitchFailurePolicy(policy),
		session.WithContractAddress(c.Contract()),
		session.WithPollInterval(c.PollDuration()),
		session.WithLogger(log.Logger.With().Str("component", "session").Logger()),
	), nil
}

// consoleApprover prompts on the terminal, or approves everything with --yes.
func consoleApprover() provider.Approver {
	if assumeYes {
		return provider.ApproverFunc(func(context.Context, provider.ApprovalRequest) (bool, error) {
			return true, nil
		})
	}
	return ui.NewPromptApprover(os.Stdin, os.Stderr)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
