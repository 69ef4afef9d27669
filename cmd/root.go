package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/fundme/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir       string
	cfg          *config.Config // as saved on disk
	runCfg       *config.Config // cfg with flag overrides, never saved
	verbose      bool
	providerFlag string
	endpointFlag string
	walletFlag   string
	assumeYes    bool
)

// errReported marks failures the controller already showed to the user.
var errReported = errors.New("reported")

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "fundme",
	Short: "Fund and withdraw from a FundMe contract",
	Long: `fundme drives a FundMe contract on Sepolia through an EIP-1193 wallet.

  Connect a wallet, read the contract balance, fund it with ether and
  withdraw as the owner, either one command at a time or from the
  interactive screen (fundme ui).

The wallet is either a remote EIP-1193 endpoint such as a Frame desktop
wallet (--provider remote, the default) or a key kept in the OS keychain
(--provider local, see fundme wallet).`,
	Version:       Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(verbose)

		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		runCfg, err = withFlagOverrides(cfg)
		return err
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
	}
	stop()
	os.Exit(1)
}

// setupLogging sends diagnostics to stderr so they never mix with command
// output. Only warnings show unless verbose is set.
func setupLogging(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}

// withFlagOverrides returns a copy of c with the global flags applied.
func withFlagOverrides(c *config.Config) (*config.Config, error) {
	out := *c
	overrides := [][2]string{
		{"provider", providerFlag},
		{"endpoint", endpointFlag},
		{"wallet", walletFlag},
	}
	for _, o := range overrides {
		if o[1] == "" {
			continue
		}
		if err := out.Set(o[0], o[1]); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func init() {
	// FUNDME_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv(config.EnvPrefix + "_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.fundme)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "wallet provider: remote or local")
	rootCmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "remote wallet endpoint")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "local wallet name (default: the default wallet)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "approve local wallet requests without asking")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		connectCmd,
		balanceCmd,
		fundCmd,
		withdrawCmd,
		uiCmd,
		networkCmd,
		walletCmd,
		selectorCmd,
		configCmd,
	)
}
