package cmd

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

var (
	signWallet string
	signJSON   bool

	verifySig     string
	verifyAddress string
)

var errSignerMismatch = errors.New("signature does not match the expected address")

// signature is the --json shape of sign and verify.
type signature struct {
	Message   string `json:"message"`
	Hash      string `json:"hash"`
	Signature string `json:"signature,omitempty"`
	Signer    string `json:"signer"`
	Valid     *bool  `json:"valid,omitempty"`
}

var signCmd = &cobra.Command{
	Use:   "sign <message|->",
	Short: "Sign a message for proof of wallet ownership",
	Long: `Sign a plaintext message with a signing wallet, compatible with the
message signing of Leather and Xverse. Use "-" to read the message from stdin.

The digest is sha256("\x17Stacks Signed Message:\n" || varint(len) || message)
and the signature is 65 bytes, R || S || recovery id.

Examples:
  stxtoken wallet sign "hello world"
  echo -n "login nonce: 12345" | stxtoken wallet sign - --wallet hot --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := messageArg(cmd, args[0])
		if err != nil {
			return err
		}

		w, mgr, err := loadSigningWallet(signWallet)
		if err != nil {
			return err
		}
		sig, err := wallet.SignMessage(w, mgr, []byte(message))
		if err != nil {
			return fmt.Errorf("signing failed: %w", err)
		}

		out := signature{
			Message:   message,
			Hash:      hex.EncodeToString(wallet.MessageHash([]byte(message))),
			Signature: hex.EncodeToString(sig),
			Signer:    w.Address(isMainnet()),
		}
		if signJSON {
			return printJSON(cmd.OutOrStdout(), out)
		}

		fmt.Println(ui.KeyValueBlock("Message signed by "+w.Name, [][2]string{
			{"Signer", ui.Addr(out.Signer)},
			{"Message", ui.Val(oneLine(message))},
			{"Digest", ui.Meta(out.Hash)},
			{"Signature", out.Signature},
		}))
		fmt.Println(ui.Hint(fmt.Sprintf("Check it with: stxtoken wallet verify %q --sig %s --address %s", message, out.Signature, out.Signer)))
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <message|->",
	Short: "Recover the signer of a signed message",
	Long: `Recover the address that signed a message. With --address the command
fails unless the recovered signer is that address; its version byte also
picks the network the signer is shown for.

Examples:
  stxtoken wallet verify "hello world" --sig <hex> --address ST...
  stxtoken wallet verify "hello world" --sig <hex> --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, err := messageArg(cmd, args[0])
		if err != nil {
			return err
		}
		if verifySig == "" {
			return errors.New("--sig is required")
		}
		sig, err := hex.DecodeString(strings.TrimPrefix(verifySig, "0x"))
		if err != nil {
			return fmt.Errorf("invalid signature hex: %w", err)
		}

		mainnetSigner := isMainnet()
		if verifyAddress != "" {
			version, _, err := c32.ParseAddress(verifyAddress)
			if err != nil {
				return fmt.Errorf("invalid --address: %w", err)
			}
			mainnetSigner = version == c32.VersionMainnetSingleSig
		}

		signer, err := wallet.VerifyMessage([]byte(message), sig, mainnetSigner)
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		out := signature{
			Message: message,
			Hash:    hex.EncodeToString(wallet.MessageHash([]byte(message))),
			Signer:  signer,
		}
		var mismatch error
		if verifyAddress != "" {
			valid := signer == verifyAddress
			out.Valid = &valid
			if !valid {
				mismatch = errSignerMismatch
			}
		}

		if signJSON {
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			return mismatch
		}

		pairs := [][2]string{
			{"Message", ui.Val(oneLine(message))},
			{"Signer", ui.Addr(signer)},
		}
		switch {
		case out.Valid == nil:
		case *out.Valid:
			pairs = append(pairs, [2]string{"Result", ui.Success("valid, signer matches")})
		default:
			pairs = append(pairs,
				[2]string{"Expected", ui.Addr(verifyAddress)},
				[2]string{"Result", ui.Err("signer does NOT match")})
		}
		fmt.Println(ui.KeyValueBlock("Signature check", pairs))
		return mismatch
	},
}

// messageArg returns arg, or all of stdin when arg is "-".
func messageArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading message from stdin: %w", err)
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oneLine keeps long or multi-line messages to one row of the block.
func oneLine(s string) string {
	return units.TruncateText(strings.ReplaceAll(s, "\n", "⏎"), 80)
}

func init() {
	signCmd.Flags().StringVar(&signWallet, "wallet", "", "wallet name (default: the default wallet)")
	signCmd.Flags().BoolVar(&signJSON, "json", false, "print the result as JSON")

	verifyCmd.Flags().StringVar(&verifySig, "sig", "", "hex signature to verify (required)")
	verifyCmd.Flags().StringVar(&verifyAddress, "address", "", "expected signer address")
	verifyCmd.Flags().BoolVar(&signJSON, "json", false, "print the result as JSON")
}
