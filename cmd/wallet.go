package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/ui"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

var (
	walletKeyFlag    bool
	walletAccount    uint32
	walletPassphrase bool
	walletShowQR     bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a watch-only wallet, or a signing wallet with --key",
	Long: `Add a wallet.

With an address the wallet is watch-only: it can be shown and connected for
reads but never signs. With --key you are prompted for a hex private key,
which is stored in the OS keychain.

Examples:
  stxtoken wallet add savings SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7
  stxtoken wallet add hot --key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag {
			// Signing wallet.
			hexKey, err := ui.PromptSecret("Private key (hex)")
			if err != nil {
				return err
			}
			w, err := mgr.AddWithKey(name, hexKey)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address(isMainnet())))))
			fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: stxtoken wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: stxtoken wallet add <name> <address>\n  Or for signing: stxtoken wallet add <name> --key")
		}
		w, err := mgr.AddWatchOnly(name, args[1])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address(isMainnet())))))
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: stxtoken wallet use %s", name)))
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a wallet from a BIP39 secret key phrase",
	Long: `Import the account key of a 12 or 24 word secret key phrase, as used by
Leather and Xverse. The phrase is prompted for and never stored; only the
derived private key goes to the OS keychain.

Examples:
  stxtoken wallet import main
  stxtoken wallet import second --account 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		phrase, err := ui.PromptSecret("Secret key phrase")
		if err != nil {
			return err
		}
		passphrase := ""
		if walletPassphrase {
			if passphrase, err = ui.PromptSecret("BIP39 passphrase"); err != nil {
				return err
			}
		}

		mgr := newWalletManager()
		w, err := mgr.ImportMnemonic(name, strings.Join(strings.Fields(phrase), " "), passphrase, walletAccount)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q imported (account %d)", name, walletAccount)))
		printAddresses(w)
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Create one with: stxtoken wallet generate myWallet"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})

		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address(isMainnet())),
				ui.Meta(walletTypeLabel(w.Type)),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured · addresses shown for %s", len(wallets), cfg.NetworkMode)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q and its stored key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			cfg.Save() //nolint:errcheck
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		cfg.Save() //nolint:errcheck
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		fmt.Println(ui.Hint("It is preselected when you connect."))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new Stacks wallet",
	Long: `Generate a 24 word secret key phrase, derive its first Stacks account and
store the private key in the OS keychain.

The phrase is displayed ONCE immediately after creation and is not stored.
Write it down: it restores the wallet here or in any Stacks wallet app.

Re-export the private key later with: stxtoken wallet export <name>`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()
		w, phrase, err := mgr.Generate(name)
		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Printf("  %s  %s\n", ui.Meta("Wallet :"), ui.Val(w.Name))
		printAddresses(w)
		fmt.Println()

		box := ui.DangerBox(
			ui.Warn("SAVE YOUR SECRET KEY PHRASE. It is shown only once. Never share it.") + "\n\n" +
				ui.Val(numberedWords(phrase)) + "\n\n" +
				ui.Hint("Lose it and the wallet cannot be recovered."),
		)
		fmt.Println(box)
		if walletShowQR {
			code, err := ui.AddressQR(w.Address(isMainnet()))
			if err != nil {
				return err
			}
			fmt.Println(code)
		}
		if net, err := activeNetwork(); err == nil && net.Faucet != "" {
			fmt.Println(ui.Hint("Fund it with testnet STX: " + net.Faucet))
		}
		fmt.Println()
		return nil
	},
}

var walletExportCmd = &cobra.Command{
	Use:   "export <name>",
	Short: "Re-export the private key of a signing wallet",
	Long: `Retrieve and display the stored private key for a signing wallet.

You must type the wallet name exactly to confirm before the key is shown.
The key is retrieved from the OS keychain and never leaves your machine.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		fmt.Println()
		fmt.Println(ui.Warn("  You are about to reveal a private key. Keep it secret."))
		fmt.Println()
		input := ui.PromptInput(fmt.Sprintf("  Type wallet name %q to confirm", name), "")
		if input != name {
			fmt.Println()
			fmt.Println(ui.Err("  Name mismatch, export cancelled."))
			return nil
		}

		mgr := newWalletManager()
		hexKey, err := mgr.ExportKey(name)
		if errors.Is(err, wallet.ErrWatchOnly) {
			return fmt.Errorf("wallet %q is watch-only and has no key", name)
		}
		if err != nil {
			return err
		}

		fmt.Println()
		box := ui.DangerBox(
			ui.Warn("PRIVATE KEY. Do not share this with anyone.") + "\n\n" +
				ui.Val(hexKey),
		)
		fmt.Println(box)
		fmt.Println()
		return nil
	},
}

func init() {
	walletAddCmd.Flags().BoolVar(&walletKeyFlag, "key", false, "prompt for a private key and store it in the OS keychain")
	walletImportCmd.Flags().Uint32Var(&walletAccount, "account", 0, "account index to derive (m/44'/5757'/<account>'/0/0)")
	walletImportCmd.Flags().BoolVar(&walletPassphrase, "passphrase", false, "prompt for a BIP39 passphrase")
	walletGenerateCmd.Flags().BoolVar(&walletShowQR, "qr", false, "print the new address as a QR code")
	walletCmd.AddCommand(walletAddCmd, walletImportCmd, walletListCmd, walletRemoveCmd, walletUseCmd,
		walletGenerateCmd, walletExportCmd, signCmd, verifyCmd)
}

func isMainnet() bool { return cfg.NetworkMode == "mainnet" }

func printAddresses(w *wallet.Wallet) {
	a := w.Addresses()
	fmt.Printf("  %s  %s\n", ui.Meta("Mainnet:"), ui.Addr(a.Mainnet))
	fmt.Printf("  %s  %s\n", ui.Meta("Testnet:"), ui.Addr(a.Testnet))
}

// numberedWords lays a phrase out four words per line with indexes.
func numberedWords(phrase string) string {
	words := strings.Fields(phrase)
	var sb strings.Builder
	for i, w := range words {
		sb.WriteString(fmt.Sprintf("%2d. %-10s", i+1, w))
		if (i+1)%4 == 0 && i+1 < len(words) {
			sb.WriteString("\n")
		} else if i+1 < len(words) {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// loadSigningWallet loads a wallet by name and verifies it can sign.
// Returns the wallet and the manager holding its key.
func loadSigningWallet(walletName string) (*wallet.Wallet, *wallet.Manager, error) {
	mgr := newWalletManager()
	if walletName == "" {
		walletName = cfg.DefaultWallet
	}
	if walletName == "" {
		if w := mgr.Default(); w != nil {
			walletName = w.Name
		}
	}
	w, err := mgr.Get(walletName)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"wallet %q not found: run `stxtoken wallet list` or set a default with `stxtoken wallet use <name>`",
			walletName,
		)
	}
	if !w.CanSign() {
		return nil, nil, fmt.Errorf(
			"wallet %q is watch-only and cannot sign\n  To add a signing wallet: stxtoken wallet add <name> --key",
			walletName,
		)
	}
	return w, mgr, nil
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t // "watch-only" is already user-friendly
	}
}
