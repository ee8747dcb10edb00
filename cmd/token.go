package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/dashboard"
	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

var (
	tokenContract string
	tokenYes      bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Read and write the SIP-010 token contract",
	Long: `Read token metadata and balances, and submit transfer and mint calls.

Sub-commands:
  stxtoken token info       show name, symbol, decimals and total supply
  stxtoken token balance    show a token balance
  stxtoken token owner      show the contract owner
  stxtoken token transfer   send tokens from the connected wallet
  stxtoken token mint       mint tokens (the contract decides who may)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if tokenContract != "" {
			return cfg.SetContract(tokenContract)
		}
		return nil
	},
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show token metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		info, err := ui.Spin("Reading token metadata…", func() (*gateway.TokenInfo, error) {
			return a.gateway.TokenInfo(ctx, cfg.Contract)
		})
		if err != nil {
			return err
		}
		fmt.Println(tokenInfoBlock(info))
		fmt.Println(ui.Meta(a.net.AddressURL(info.ContractAddress)))
		return nil
	},
}

var tokenBalanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Show the token balance of an address (default: connected wallet)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		var who string
		if len(args) == 1 {
			if who, err = a.resolveRecipient(ctx, args[0]); err != nil {
				return err
			}
		} else {
			if !a.restore(ctx) {
				return fmt.Errorf("no wallet connected: pass an address or run `stxtoken connect`")
			}
			who = a.session.State().Address
		}

		info, err := a.gateway.TokenInfo(ctx, cfg.Contract)
		if err != nil {
			return err
		}
		bal, err := ui.Spin("Reading balance…", func() (string, error) {
			raw, err := a.gateway.TokenBalance(ctx, cfg.Contract, who)
			if err != nil {
				return "", err
			}
			return units.FormatUnits(raw, int(info.Decimals)), nil
		})
		if err != nil {
			return err
		}

		fmt.Println(ui.KeyValueBlock(info.Name+" balance", [][2]string{
			{"Address", ui.Addr(who)},
			{"Balance", bal + " " + info.Symbol},
		}))
		return nil
	},
}

var tokenOwnerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the contract owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		owner, err := a.gateway.ContractOwner(ctx, cfg.Contract)
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Contract owner", [][2]string{
			{"Contract", cfg.Contract},
			{"Owner", ui.Addr(owner)},
		}))
		return nil
	},
}

var tokenTransferCmd = &cobra.Command{
	Use:   "transfer <amount> <recipient>",
	Short: "Transfer tokens from the connected wallet",
	Long: `Transfer tokens from the connected wallet to a Stacks address or BNS name.

The transaction carries a post-condition that the sender gives away exactly
the amount, so the contract cannot move more on your behalf.

Examples:
  stxtoken token transfer 1.5 ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ
  stxtoken token transfer 10 alice.btc --yes`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitToken(cmd.Context(), dashboard.ActionTransfer, args[0], args[1])
	},
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint <amount> <recipient>",
	Short: "Mint tokens to a recipient",
	Long: `Mint new tokens to a Stacks address or BNS name.

Whether the connected wallet may mint is decided by the contract; a
rejected mint still costs the transaction fee.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitToken(cmd.Context(), dashboard.ActionMint, args[0], args[1])
	},
}

// submitToken runs a transfer or mint through the dashboard controller so
// the command line and the TUI share validation and status messages.
func submitToken(ctx context.Context, action dashboard.Action, amount, recipient string) error {
	var approver wallet.Approver = ui.NewTerminalApprover(cfg.NetworkMode == "mainnet")
	if tokenYes {
		approver = wallet.AutoApprover{}
	}
	a, err := newApp(approver)
	if err != nil {
		return err
	}

	readCtx, cancel := context.WithTimeout(ctx, config.ReadTimeout)
	defer cancel()

	if !a.restore(readCtx) {
		return fmt.Errorf("no wallet connected: run `stxtoken connect` first")
	}
	if recipient, err = a.resolveRecipient(readCtx, recipient); err != nil {
		return err
	}

	// The command exits right after submitting, so there is nothing to
	// refresh later.
	ctrl := a.controller(dashboard.WithScheduler(func(time.Duration, func()) {}))
	if err := ctrl.Load(readCtx); err != nil {
		return err
	}
	ctrl.SetInput(action, dashboard.Form{Amount: amount, Recipient: recipient})

	out, err := ctrl.Submit(ctx, action)
	v := ctrl.View()
	switch {
	case errors.Is(err, dashboard.ErrInvalidAmount):
		return errors.New(v.Status.Message)
	case err != nil:
		return err
	case out.Status == gateway.Canceled:
		fmt.Println(ui.Warn(v.Status.Message))
		return nil
	}

	fmt.Println(ui.Success(v.Status.Message))
	fmt.Println(ui.KeyValueBlock("Submitted", [][2]string{
		{"Action", action.String()},
		{"Amount", units.FormatTokenAmount(amount, int(v.Info.Decimals)) + " " + v.Info.Symbol},
		{"Recipient", ui.Addr(recipient)},
		{"TxID", ui.Addr(out.TxID)},
		{"Explorer", a.net.TxURL(out.TxID)},
	}))
	fmt.Println(ui.Hint("Balances update once the transaction is mined. Check with: stxtoken token balance"))
	return nil
}

func tokenInfoBlock(info *gateway.TokenInfo) string {
	supply := units.FormatUnits(info.TotalSupply, int(info.Decimals))
	return ui.KeyValueBlock(info.Name, [][2]string{
		{"Symbol", info.Symbol},
		{"Decimals", fmt.Sprint(info.Decimals)},
		{"Total supply", supply + " " + info.Symbol},
		{"Contract", ui.Addr(info.ContractAddress)},
	})
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenContract, "contract", "", "token contract for this invocation (default: config)")
	for _, c := range []*cobra.Command{tokenTransferCmd, tokenMintCmd} {
		c.Flags().BoolVarP(&tokenYes, "yes", "y", false, "approve with the connected wallet without prompting")
	}
	tokenCmd.AddCommand(tokenInfoCmd, tokenBalanceCmd, tokenOwnerCmd, tokenTransferCmd, tokenMintCmd)
}
