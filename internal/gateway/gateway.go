// Package gateway reads token state from, and submits calls to, a single
// SIP-010 fungible token contract.
package gateway

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
	"github.com/Mohsinsiddi/stxtoken/internal/tx"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

// Contract function names.
const (
	fnGetName          = "get-name"
	fnGetSymbol        = "get-symbol"
	fnGetDecimals      = "get-decimals"
	fnGetTotalSupply   = "get-total-supply"
	fnGetBalance       = "get-balance"
	fnGetContractOwner = "get-contract-owner"
	fnTransfer         = "transfer"
	fnMint             = "mint"
)

// Reader evaluates read-only contract functions.
type Reader interface {
	CallReadOnly(ctx context.Context, contract clarity.ContractPrincipal, function, sender string, args ...clarity.Value) (clarity.Value, error)
}

// Wallet signs and broadcasts contract calls after user approval. It returns
// wallet.ErrRejected when the user declines.
type Wallet interface {
	ContractCall(ctx context.Context, app wallet.AppDetails, req tx.ContractCallRequest) (string, error)
}

// Gateway talks to token contracts through a Reader and a Wallet.
type Gateway struct {
	reader    Reader
	wallet    Wallet
	app       wallet.AppDetails
	assetName string
	log       zerolog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithAppDetails sets the app identity attached to wallet requests.
func WithAppDetails(app wallet.AppDetails) Option {
	return func(g *Gateway) { g.app = app }
}

// WithAssetName sets the token name declared by the contract's
// define-fungible-token, used in transfer post-conditions.
func WithAssetName(name string) Option {
	return func(g *Gateway) { g.assetName = name }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New creates a gateway. w may be nil for read-only use.
func New(r Reader, w Wallet, opts ...Option) *Gateway {
	g := &Gateway{reader: r, wallet: w, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// parseContract splits "ADDR.name" without touching the network.
func parseContract(contractAddress string) (clarity.ContractPrincipal, error) {
	if _, _, err := clarity.SplitContractID(contractAddress); err != nil {
		return clarity.ContractPrincipal{}, wrap(ErrInvalidAddressFormat, err)
	}
	c, err := clarity.ParseContractID(contractAddress)
	if err != nil {
		return clarity.ContractPrincipal{}, wrap(ErrInvalidAddressFormat, err)
	}
	return c, nil
}

// fail logs the cause and returns the domain error.
func (g *Gateway) fail(op string, kind, cause error) error {
	g.log.Error().Err(cause).Str("op", op).Msg(kind.Error())
	return wrap(kind, cause)
}

func (g *Gateway) call(ctx context.Context, c clarity.ContractPrincipal, fn, sender string, args ...clarity.Value) (clarity.Value, error) {
	v, err := g.reader.CallReadOnly(ctx, c, fn, sender, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return v, nil
}
