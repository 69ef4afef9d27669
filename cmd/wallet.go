package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/Mohsinsiddi/fundme/internal/wallet"
	"github.com/spf13/cobra"
)

var (
	walletKeyFlag      string
	walletGenerateFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage local signing wallets",
	Long: `Manage the wallets used by --provider local. Private keys live in the
OS keychain; only names and addresses are written to wallets.json.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a signing wallet from a key, or generate one",
	Long: `Add a signing wallet.

  fundme wallet add alice --key 0x<private-key>
  fundme wallet add bob --generate

A generated private key is displayed ONCE. Copy it and store it in a
password manager.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		switch {
		case walletGenerateFlag:
			w, hexKey, err := mgr.Generate(name)
			if err != nil {
				return err
			}
			fmt.Println()
			fmt.Printf("  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
			fmt.Printf("  %s  %s\n\n", ui.Meta("Address:"), ui.Addr(w.Address))
			fmt.Println(ui.DangerBox(
				ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once. Never share it.") + "\n\n" +
					ui.Val(hexKey),
			))
			fmt.Println(ui.Hint("Fund it with Sepolia ether from a faucet before calling fund."))

		case walletKeyFlag != "":
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))

		default:
			return errors.New("pass --key <private-key> or --generate\n  Usage: fundme wallet add <name> --key <private-key>")
		}

		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: fundme wallet use %s", name)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: fundme wallet add myWallet --generate"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Default", Width: 8},
		})
		for i, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
				t.Highlight = i
			}
			t.AddRow(w.Name, w.Address, def)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			picked, err := pickWallet(mgr)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.Wallet = name
		if err := cfg.Save("wallet"); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("This wallet signs for --provider local when --wallet is not given."))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}
		if cfg.Wallet == name {
			cfg.Wallet = ""
			if err := cfg.Save("wallet"); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func pickWallet(mgr *wallet.Manager) (string, error) {
	wallets, err := mgr.List()
	if err != nil {
		return "", err
	}
	items := make([]ui.PickerItem, len(wallets))
	for i, w := range wallets {
		items[i] = ui.PickerItem{
			Label:    w.Name,
			SubLabel: ui.TruncateAddr(w.Address),
			Value:    w.Name,
			Current:  w.IsDefault,
		}
	}
	picked, err := ui.PickItem("Default Wallet  ·  select to use", items)
	if errors.Is(err, ui.ErrNothingToPick) {
		return "", errors.New("no wallets configured; add one with: fundme wallet add <name> --generate")
	}
	return picked, err
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key (hex) of the wallet")
	walletAddCmd.Flags().BoolVar(&walletGenerateFlag, "generate", false, "generate a new key")
	walletAddCmd.MarkFlagsMutuallyExclusive("key", "generate")

	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}
