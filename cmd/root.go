package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/logger"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/stxtoken/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
	testnet bool
	mainnet bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "stxtoken",
	Short: "SIP-010 token dashboard for Stacks",
	Long: `stxtoken connects a wallet to one SIP-010 token contract on Stacks.

  Show token metadata and balances, transfer and mint tokens, and watch
  everything live in a terminal dashboard.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation. Without either flag the persisted mode is used
(default: testnet). Persist with: stxtoken config set-network-mode <mode>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger.Init(level, os.Stderr)
		logger.Get().Debug().
			Str("config_dir", cfg.Dir()).
			Str("network", cfg.NetworkMode).
			Strs("env_overrides", cfg.FromEnv()).
			Msg("config loaded")
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLine(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: ~/.stxtoken, env "+config.EnvConfigDir+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&testnet, "testnet", false, "use testnet for this invocation")
	rootCmd.PersistentFlags().BoolVar(&mainnet, "mainnet", false, "use mainnet for this invocation")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		tokenCmd,
		dashboardCmd,
		walletCmd,
		networkCmd,
		configCmd,
	)
}
