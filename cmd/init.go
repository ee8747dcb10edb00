package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Launch the interactive setup wizard to choose the network, the token contract and an optional watch-only wallet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		result, err := ui.RunWizard(cfg.Contract)
		if err != nil {
			return err
		}

		// Apply wizard results to config.
		if err := cfg.SetNetworkMode(result.NetworkMode); err != nil {
			return err
		}
		if err := cfg.SetContract(result.Contract); err != nil {
			return err
		}

		// Add wallet if provided.
		if result.WalletAddress != "" {
			mgr := newWalletManager()
			if _, err := mgr.AddWatchOnly(result.WalletName, result.WalletAddress); err != nil {
				fmt.Println(ui.Warn(fmt.Sprintf("Could not add wallet: %v", err)))
			} else if err := mgr.SetDefault(result.WalletName); err == nil {
				cfg.DefaultWallet = result.WalletName
			}
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("stxtoken configured! Run `stxtoken --help` to explore commands."))
		fmt.Println(ui.Hint("Add a signing wallet with: stxtoken wallet generate <name>"))
		return nil
	},
}
