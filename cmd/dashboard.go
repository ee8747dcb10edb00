package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
)

var dashInterval int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Live token dashboard",
	Long: `Open the interactive token dashboard.

It shows the token metadata, your STX and token balances, and forms for
transfer and mint. Wallet prompts (connect, approve a call) appear inside
the dashboard. Balances refresh every --interval seconds and a few seconds
after each submitted transaction.

Examples:
  stxtoken dashboard
  stxtoken dashboard --interval 10 --mainnet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		approver := ui.NewTUIApprover(cfg.NetworkMode == "mainnet")
		a, err := newApp(approver)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		a.restore(ctx)
		cancel()

		interval := cfg.WatchInterval
		if dashInterval > 0 {
			interval = dashInterval
		}

		return ui.RunTokenDash(cmd.Context(), ui.TokenDashConfig{
			Controller:   a.controller(),
			Session:      a.session,
			Network:      a.net,
			Contract:     cfg.Contract,
			Approver:     approver,
			RefreshEvery: time.Duration(interval) * time.Second,
		})
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&dashInterval, "interval", 0, "auto-refresh interval in seconds (default: config watch_interval)")
}
