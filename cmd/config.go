package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *cfg
		if shown.APIKey != "" {
			shown.APIKey = "********"
		}
		data, err := json.MarshalIndent(&shown, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		if env := cfg.FromEnv(); len(env) > 0 {
			fmt.Println(ui.Meta("From environment: " + strings.Join(env, ", ")))
		}
		return nil
	},
}

var configSetNetworkModeCmd = &cobra.Command{
	Use:   "set-network-mode <mainnet|testnet|devnet>",
	Short: "Set the network mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetNetworkMode(args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Network mode set to %s", ui.NetworkName(cfg.NetworkMode))))
		return nil
	},
}

var configSetContractCmd = &cobra.Command{
	Use:   "set-contract <ADDRESS.contract-name>",
	Short: "Set the token contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.SetContract(args[0]); err != nil {
			return fmt.Errorf("invalid contract %q: %w", args[0], err)
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Token contract set to %s", ui.Addr(cfg.Contract))))
		return nil
	},
}

var configSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key [key]",
	Short: "Set the Hiro API key (prompted when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else {
			var err error
			if key, err = ui.PromptSecret("Hiro API key (empty to clear)"); err != nil {
				return err
			}
		}
		cfg.APIKey = strings.TrimSpace(key)
		if err := cfg.Save(); err != nil {
			return err
		}
		if cfg.APIKey == "" {
			fmt.Println(ui.Success("API key cleared."))
		} else {
			fmt.Println(ui.Success("API key saved."))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetNetworkModeCmd, configSetContractCmd, configSetAPIKeyCmd)
}
