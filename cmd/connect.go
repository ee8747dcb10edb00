package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/price"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

var statusQR bool

var connectCmd = &cobra.Command{
	Use:   "connect [wallet]",
	Short: "Connect a wallet to the token app",
	Long: `Connect one of your wallets and remember it for later commands.

Without an argument you pick a wallet and confirm the connection. Naming a
wallet connects it directly.

Examples:
  stxtoken connect
  stxtoken connect alice`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var approver wallet.Approver
		if len(args) == 1 {
			approver = wallet.AutoApprover{Wallet: args[0], Mgr: newWalletManager()}
		} else {
			approver = ui.NewTerminalApprover(cfg.NetworkMode == "mainnet")
		}

		a, err := newApp(approver)
		if err != nil {
			return err
		}

		// No deadline: the user may take as long as they like to approve.
		if err := a.session.Connect(cmd.Context()); err != nil {
			if errors.Is(err, wallet.ErrRejected) {
				fmt.Println(ui.Meta("Connection rejected."))
				return nil
			}
			return err
		}

		s := a.session.State()
		fmt.Println(ui.Success("Connected to " + cfg.AppName))
		fmt.Println(ui.KeyValueBlock("Session", [][2]string{
			{"Network", ui.NetworkName(a.net.Name)},
			{"Address", ui.Addr(s.Address)},
			{"STX balance", s.Balance + " STX"},
		}))
		return nil
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Sign out of the connected wallet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		if !a.connector.IsSignedIn() {
			fmt.Println(ui.Meta("No wallet connected, nothing to do."))
			return nil
		}
		if err := a.session.Disconnect(); err != nil {
			return fmt.Errorf("signing out: %w", err)
		}
		fmt.Println(ui.Success("Disconnected."))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the wallet session and STX balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		if !a.restore(ctx) {
			fmt.Println(ui.KeyValueBlock("Session", [][2]string{
				{"Network", ui.NetworkName(a.net.Name)},
				{"Status", "not connected"},
			}))
			fmt.Println(ui.Hint("Connect with: stxtoken connect"))
			return nil
		}

		s := a.session.State()
		user, _ := a.connector.LoadUserData()
		pairs := [][2]string{
			{"Network", ui.NetworkName(a.net.Name)},
			{"Wallet", user.Wallet},
			{"Address", ui.Addr(s.Address)},
			{"STX balance", s.Balance + " STX"},
		}

		fetcher := price.NewFetcher(cfg.PriceCurrency)
		if a.net.IsMainnet() {
			micro, err := a.client.STXBalance(ctx, s.Address)
			if err == nil {
				if p, err := fetcher.STXPrice(ctx); err == nil {
					pairs = append(pairs, [2]string{"Value", price.FiatValue(micro, p) + " " + fetcher.Currency()})
				}
			}
		}
		pairs = append(pairs, [2]string{"Explorer", a.net.AddressURL(s.Address)})
		fmt.Println(ui.KeyValueBlock("Session", pairs))

		if a.net.Faucet != "" {
			fmt.Println(ui.Hint("Testnet STX: " + a.net.Faucet))
		}
		if statusQR {
			code, err := ui.AddressQR(s.Address)
			if err != nil {
				return err
			}
			fmt.Println(code)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusQR, "qr", false, "print the address as a QR code")
}
