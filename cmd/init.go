package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/fundme/internal/config"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to choose the wallet provider and policies.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunWizard()
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		keys, err := applyWizard(cfg, result)
		if err != nil {
			return err
		}
		if err := cfg.Save(keys...); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("fundme configured! Run `fundme ui` to open the FundMe screen."))
		if result.Provider == "local" {
			fmt.Println(ui.Hint("No wallet yet? Run: fundme wallet add <name> --generate"))
		}
		return nil
	},
}

// applyWizard copies the wizard's non-empty answers into c and returns the
// keys it set.
func applyWizard(c *config.Config, r *ui.WizardResult) ([]string, error) {
	answers := [][2]string{
		{"provider", r.Provider},
		{"switch_failure_policy", r.SwitchFailurePolicy},
		{"rpc_algorithm", r.RPCAlgorithm},
		{"endpoint", r.Endpoint},
		{"wallet", r.Wallet},
	}
	var keys []string
	for _, a := range answers {
		if a[1] == "" {
			continue
		}
		if err := c.Set(a[0], a[1]); err != nil {
			return nil, err
		}
		keys = append(keys, a[0])
	}
	return keys, nil
}
