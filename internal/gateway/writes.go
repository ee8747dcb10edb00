package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
	"github.com/Mohsinsiddi/stxtoken/internal/tx"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

// Status says how a wallet hand-off ended.
type Status int

const (
	Finished Status = iota + 1
	Canceled
)

func (s Status) String() string {
	switch s {
	case Finished:
		return "finished"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// Outcome is the result of a submitted call: either Finished with a TxID or
// Canceled by the user.
type Outcome struct {
	Status Status
	TxID   string
}

// Err returns ErrTransactionRejected for a canceled outcome, nil otherwise.
func (o Outcome) Err() error {
	if o.Status == Canceled {
		return ErrTransactionRejected
	}
	return nil
}

// TransferRequest moves Amount smallest units from Sender to Recipient.
type TransferRequest struct {
	Contract  string
	Amount    *big.Int
	Recipient string
	Sender    string
}

// MintRequest creates Amount smallest units for Recipient.
type MintRequest struct {
	Contract  string
	Amount    *big.Int
	Recipient string
}

// Transfer calls transfer(amount, sender, recipient, memo) with a
// post-condition that the sender sends exactly amount of the token, so the
// transaction aborts if it would move anything else.
func (g *Gateway) Transfer(ctx context.Context, r TransferRequest) (Outcome, error) {
	c, err := parseContract(r.Contract)
	if err != nil {
		return Outcome{}, err
	}
	req, err := g.transferCall(c, r)
	if err != nil {
		return Outcome{}, g.fail("transfer", ErrTransactionSubmission, err)
	}
	return g.submit(ctx, req)
}

func (g *Gateway) transferCall(c clarity.ContractPrincipal, r TransferRequest) (tx.ContractCallRequest, error) {
	if r.Amount == nil {
		return tx.ContractCallRequest{}, errors.New("missing amount")
	}
	sender, err := clarity.ParseStandardPrincipal(r.Sender)
	if err != nil {
		return tx.ContractCallRequest{}, fmt.Errorf("sender: %w", err)
	}
	recipient, err := clarity.ParseStandardPrincipal(r.Recipient)
	if err != nil {
		return tx.ContractCallRequest{}, fmt.Errorf("recipient: %w", err)
	}
	amount, err := clarity.NewUInt(r.Amount)
	if err != nil {
		return tx.ContractCallRequest{}, fmt.Errorf("amount: %w", err)
	}

	pc, err := tx.NewFungiblePostCondition(r.Sender, c.Address(), g.assetName, tx.ConditionEqual, new(big.Int).Set(r.Amount))
	if err != nil {
		return tx.ContractCallRequest{}, err
	}
	return tx.ContractCallRequest{
		Contract:          c,
		FunctionName:      fnTransfer,
		FunctionArgs:      []clarity.Value{amount, sender, recipient, clarity.StringUTF8("")},
		PostConditions:    []tx.FungiblePostCondition{pc},
		PostConditionMode: tx.PostConditionModeDeny,
	}, nil
}

// Mint calls mint(amount, recipient). No post-condition is attached.
func (g *Gateway) Mint(ctx context.Context, r MintRequest) (Outcome, error) {
	c, err := parseContract(r.Contract)
	if err != nil {
		return Outcome{}, err
	}
	req, err := mintCall(c, r)
	if err != nil {
		return Outcome{}, g.fail("mint", ErrTransactionSubmission, err)
	}
	return g.submit(ctx, req)
}

func mintCall(c clarity.ContractPrincipal, r MintRequest) (tx.ContractCallRequest, error) {
	if r.Amount == nil {
		return tx.ContractCallRequest{}, errors.New("missing amount")
	}
	recipient, err := clarity.ParseStandardPrincipal(r.Recipient)
	if err != nil {
		return tx.ContractCallRequest{}, fmt.Errorf("recipient: %w", err)
	}
	amount, err := clarity.NewUInt(r.Amount)
	if err != nil {
		return tx.ContractCallRequest{}, fmt.Errorf("amount: %w", err)
	}
	return tx.ContractCallRequest{
		Contract:          c,
		FunctionName:      fnMint,
		FunctionArgs:      []clarity.Value{amount, recipient},
		PostConditionMode: tx.PostConditionModeDeny,
	}, nil
}

func (g *Gateway) submit(ctx context.Context, req tx.ContractCallRequest) (Outcome, error) {
	if g.wallet == nil {
		return Outcome{}, g.fail(req.FunctionName, ErrTransactionSubmission, errors.New("no wallet configured"))
	}
	txid, err := g.wallet.ContractCall(ctx, g.app, req)
	switch {
	case errors.Is(err, wallet.ErrRejected):
		g.log.Info().Str("function", req.FunctionName).Msg("transaction canceled by user")
		return Outcome{Status: Canceled}, nil
	case err != nil:
		return Outcome{}, g.fail(req.FunctionName, ErrTransactionSubmission, err)
	}
	return Outcome{Status: Finished, TxID: txid}, nil
}
