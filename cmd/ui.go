package cmd

import (
	"github.com/Mohsinsiddi/fundme/internal/notify"
	"github.com/Mohsinsiddi/fundme/internal/provider"
	"github.com/Mohsinsiddi/fundme/internal/ui"
	"github.com/spf13/cobra"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive FundMe screen",
	Long: `Open a full-screen view with the Connect, Get Balance, Fund and
Withdraw buttons, an amount input and the notification area.

Local wallet requests are approved inside the screen unless --yes is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		bridge := &ui.Bridge{}
		var approver provider.Approver = bridge
		if assumeYes {
			approver = consoleApprover()
		}

		p := detectProvider(ctx, approver)
		if p != nil {
			defer provider.Release(p)
		}

		ctrl, err := newController(runCfg, p, bridge)
		if err != nil {
			return err
		}
		queue := notify.NewQueue(runCfg.NotificationDuration())
		app := ui.NewApp(ctx, ctrl, queue, ctrl.Target(), ctrl.ContractAddress())
		return ui.Run(ctx, app, bridge)
	},
}
