package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stxtoken/internal/tx"
)

// ErrRejected is returned when the user declines a wallet prompt.
var ErrRejected = errors.New("request rejected by user")

// ErrNoWallets is returned by Connect when there is nothing to connect.
var ErrNoWallets = errors.New("no wallets configured (run: stxtoken wallet generate <name>)")

// AppDetails identifies the requesting app in wallet prompts.
type AppDetails struct {
	Name string
	Icon string
}

// CallPreview is what the user sees before approving a contract call.
type CallPreview struct {
	Wallet  *Wallet
	Sender  string
	Network string
	Request tx.ContractCallRequest
	Nonce   uint64
	Fee     uint64
}

// Approver asks the user to approve wallet requests. Implementations return
// ErrRejected when the user declines.
type Approver interface {
	ApproveConnect(ctx context.Context, app AppDetails, wallets []*Wallet) (*Wallet, error)
	ApproveCall(ctx context.Context, app AppDetails, preview CallPreview) error
}

// Broadcaster is the chain access a wallet needs to submit a call.
type Broadcaster interface {
	NextNonce(ctx context.Context, address string) (uint64, error)
	Broadcast(ctx context.Context, raw []byte) (string, error)
}

// Connector is the app-facing side of the wallet: it connects an account,
// remembers it across runs, and signs contract calls after approval.
type Connector struct {
	wallets  *Manager
	session  *SessionFile
	approver Approver
	chain    Broadcaster
	params   tx.Params
	network  string
	fee      uint64
	log      zerolog.Logger
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithFee sets the fee in micro-STX attached to every call.
func WithFee(fee uint64) ConnectorOption {
	return func(c *Connector) { c.fee = fee }
}

// WithNetworkName labels previews with the network name.
func WithNetworkName(name string) ConnectorOption {
	return func(c *Connector) { c.network = name }
}

// WithConnectorLogger sets the logger.
func WithConnectorLogger(l zerolog.Logger) ConnectorOption {
	return func(c *Connector) { c.log = l }
}

// NewConnector wires a connector. approver may be replaced later with
// SetApprover, e.g. once a TUI is running.
func NewConnector(wallets *Manager, session *SessionFile, approver Approver, chain Broadcaster, params tx.Params, opts ...ConnectorOption) *Connector {
	c := &Connector{
		wallets:  wallets,
		session:  session,
		approver: approver,
		chain:    chain,
		params:   params,
		network:  "testnet",
		log:      zerolog.Nop(),
	}
	if params == tx.Mainnet {
		c.network = "mainnet"
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetApprover swaps the approval front end.
func (c *Connector) SetApprover(a Approver) { c.approver = a }

// Mainnet reports whether calls target mainnet.
func (c *Connector) Mainnet() bool { return c.params == tx.Mainnet }

// Connect asks the user to pick and approve a wallet, then stores the
// session.
func (c *Connector) Connect(ctx context.Context, app AppDetails) (UserData, error) {
	wallets := c.wallets.List()
	if len(wallets) == 0 {
		return UserData{}, ErrNoWallets
	}

	w, err := c.approver.ApproveConnect(ctx, app, wallets)
	if err != nil {
		return UserData{}, err
	}
	if w == nil {
		return UserData{}, ErrRejected
	}

	u := UserData{
		Wallet:     w.Name,
		Addresses:  w.Addresses(),
		AppName:    app.Name,
		SignedInAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := c.session.Save(u); err != nil {
		return UserData{}, fmt.Errorf("saving session: %w", err)
	}
	c.log.Info().Str("wallet", w.Name).Str("address", u.AddressFor(c.Mainnet())).Msg("wallet connected")
	return u, nil
}

// IsSignedIn reports whether a session is stored.
func (c *Connector) IsSignedIn() bool {
	return c.session.Active()
}

// LoadUserData returns the stored session.
func (c *Connector) LoadUserData() (UserData, error) {
	return c.session.Load()
}

// SignOut forgets the session.
func (c *Connector) SignOut() error {
	return c.session.Clear()
}

// ContractCall shows the call to the user, then signs and broadcasts it
// from the connected wallet. It returns the txid, or ErrRejected when the
// user declines.
func (c *Connector) ContractCall(ctx context.Context, app AppDetails, req tx.ContractCallRequest) (string, error) {
	u, err := c.session.Load()
	if err != nil {
		return "", err
	}
	w, err := c.wallets.Get(u.Wallet)
	if err != nil {
		return "", fmt.Errorf("connected wallet %q: %w", u.Wallet, err)
	}
	if !w.CanSign() {
		return "", fmt.Errorf("%q: %w", w.Name, ErrWatchOnly)
	}

	sender := w.Address(c.Mainnet())
	nonce, err := c.chain.NextNonce(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("fetching nonce: %w", err)
	}

	if req.PostConditionMode == 0 {
		req.PostConditionMode = tx.PostConditionModeDeny
	}
	preview := CallPreview{
		Wallet:  w,
		Sender:  sender,
		Network: c.network,
		Request: req,
		Nonce:   nonce,
		Fee:     c.fee,
	}
	if err := c.approver.ApproveCall(ctx, app, preview); err != nil {
		return "", err
	}

	signed, err := NewSigner(w, c.wallets).SignContractCall(c.params, req, nonce, c.fee)
	if err != nil {
		return "", err
	}
	raw, err := signed.Serialize()
	if err != nil {
		return "", fmt.Errorf("serializing transaction: %w", err)
	}
	localID, err := signed.TxID()
	if err != nil {
		return "", err
	}

	txid, err := c.chain.Broadcast(ctx, raw)
	if err != nil {
		return "", err
	}
	if txid != localID {
		c.log.Warn().Str("node_txid", txid).Str("local_txid", localID).Msg("node reported a different txid")
	}
	c.log.Info().
		Str("function", req.FunctionName).
		Str("contract", req.ContractID()).
		Str("txid", txid).
		Uint64("nonce", nonce).
		Msg("transaction broadcast")
	return txid, nil
}

// AutoApprover approves everything without asking, using the named wallet
// (or the default) on connect. It backs --yes and scripted use.
type AutoApprover struct {
	Wallet string
	Mgr    *Manager
}

func (a AutoApprover) ApproveConnect(_ context.Context, _ AppDetails, wallets []*Wallet) (*Wallet, error) {
	if a.Wallet != "" {
		for _, w := range wallets {
			if w.Name == a.Wallet {
				return w, nil
			}
		}
		return nil, fmt.Errorf("%q: %w", a.Wallet, ErrWalletNotFound)
	}
	if a.Mgr != nil {
		if w := a.Mgr.Default(); w != nil {
			return w, nil
		}
	}
	if len(wallets) == 1 {
		return wallets[0], nil
	}
	return nil, errors.New("several wallets configured: name one or set a default")
}

func (AutoApprover) ApproveCall(context.Context, AppDetails, CallPreview) error { return nil }
