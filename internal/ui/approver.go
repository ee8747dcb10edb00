package ui

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

// TerminalApprover asks for wallet approvals with terminal prompts.
type TerminalApprover struct {
	Prompter *Prompter
	Mainnet  bool
	// Pick chooses among several wallets; defaults to PickItem.
	Pick func(title string, items []PickerItem, start int) (string, error)
}

// NewTerminalApprover prompts on stdin/stderr.
func NewTerminalApprover(mainnet bool) *TerminalApprover {
	return &TerminalApprover{Prompter: stdPrompter, Mainnet: mainnet, Pick: PickItem}
}

// ApproveConnect lets the user choose a wallet and confirm the connection.
func (a *TerminalApprover) ApproveConnect(_ context.Context, app wallet.AppDetails, wallets []*wallet.Wallet) (*wallet.Wallet, error) {
	chosen := wallets[0]
	if len(wallets) > 1 {
		items, start := WalletItems(wallets, a.Mainnet)
		name, err := a.Pick(fmt.Sprintf("%s wants to connect. Choose a wallet", app.Name), items, start)
		if errors.Is(err, ErrPickCanceled) {
			return nil, wallet.ErrRejected
		}
		if err != nil {
			return nil, err
		}
		for _, w := range wallets {
			if w.Name == name {
				chosen = w
			}
		}
	}

	q := fmt.Sprintf("Connect %s (%s) to %s?", chosen.Name, chosen.Address(a.Mainnet), app.Name)
	if !a.Prompter.Confirm(q) {
		return nil, wallet.ErrRejected
	}
	return chosen, nil
}

// ApproveCall shows the call and asks for confirmation.
func (a *TerminalApprover) ApproveCall(_ context.Context, app wallet.AppDetails, p wallet.CallPreview) error {
	fmt.Fprintln(a.Prompter.out, RenderCallPreview(app, p))
	confirm := a.Prompter.Confirm
	if p.Network == "mainnet" {
		confirm = a.Prompter.ConfirmDanger
	}
	if !confirm("Sign and broadcast this transaction?") {
		return wallet.ErrRejected
	}
	return nil
}

// WalletItems builds picker entries for wallets and returns the index of the
// default one. Watch-only wallets are listed but cannot be picked.
func WalletItems(wallets []*wallet.Wallet, mainnet bool) ([]PickerItem, int) {
	items := make([]PickerItem, 0, len(wallets))
	start := 0
	for i, w := range wallets {
		item := PickerItem{Label: w.Name, SubLabel: w.Address(mainnet), Value: w.Name}
		switch {
		case !w.CanSign():
			item.Badge = wallet.TypeWatchOnly
			item.Disabled = true
		case w.IsDefault:
			item.Badge = "default"
			start = i
		}
		items = append(items, item)
	}
	return items, start
}

// RenderCallPreview describes a contract call for approval.
func RenderCallPreview(app wallet.AppDetails, p wallet.CallPreview) string {
	req := p.Request
	args := make([]string, 0, len(req.FunctionArgs))
	for _, a := range req.FunctionArgs {
		args = append(args, a.String())
	}

	pairs := [][2]string{
		{"App", app.Name},
		{"Network", p.Network},
		{"Wallet", p.Wallet.Name},
		{"Sender", p.Sender},
		{"Contract", req.ContractID()},
		{"Function", req.FunctionName},
		{"Arguments", strings.Join(args, " ")},
		{"Fee", units.FormatUnits(new(big.Int).SetUint64(p.Fee), units.STXDecimals) + " STX"},
		{"Nonce", strconv.FormatUint(p.Nonce, 10)},
		{"Post-cond. mode", req.PostConditionMode.String()},
	}
	for i, pc := range req.PostConditions {
		pairs = append(pairs, [2]string{fmt.Sprintf("Post-condition %d", i+1), pc.Describe()})
	}
	if len(req.PostConditions) == 0 {
		pairs = append(pairs, [2]string{"Post-conditions", "none"})
	}

	block := KeyValueBlock("Contract call", pairs)
	if p.Network == "mainnet" {
		return DangerBox(block + "\n" + Warn("This transaction spends real STX on mainnet."))
	}
	return block
}
