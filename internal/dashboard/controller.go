// Package dashboard holds the UI state of the token dashboard: token data,
// loading flags, the transaction status line and the transfer/mint forms.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/session"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
)

// DefaultRefreshDelay is how long to wait after a submission before
// re-reading chain state.
const DefaultRefreshDelay = 8 * time.Second

// Status line messages.
const (
	MsgLoadFailed = "Failed to load contract data. Please check the contract address and refresh."
	MsgRejected   = "Transaction rejected by user."
	MsgUnknown    = "An unknown error occurred."
	MsgZeroAmount = "Amount must be greater than 0."
)

// ErrIncomplete is returned by Submit when a field is empty, no wallet is
// connected, or token info has not been loaded. Nothing is changed.
var ErrIncomplete = errors.New("amount, recipient, wallet and token info are required")

// ErrInvalidAmount is returned by Submit when the amount does not parse or
// is not positive. The status line explains why.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrBusy is returned by Submit while another submission is waiting on the
// wallet.
var ErrBusy = errors.New("a transaction is already waiting on the wallet")

// Action selects a form.
type Action int

const (
	ActionTransfer Action = iota
	ActionMint
)

func (a Action) String() string {
	if a == ActionMint {
		return "mint"
	}
	return "transfer"
}

// StatusKind classifies the status line.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusSuccess
	StatusError
)

// TxStatus is the status line shown under the forms.
type TxStatus struct {
	Kind    StatusKind
	Message string
}

// Form is the input of one action.
type Form struct {
	Amount    string
	Recipient string
}

// View is a snapshot of everything the presentation renders.
type View struct {
	Info      *gateway.TokenInfo
	Balance   *big.Int
	Loading   bool // a submission is waiting on the wallet
	UILoading bool // token data is loading
	Status    TxStatus
	Transfer  Form
	Mint      Form
	LastTxID  string
}

// Gateway is the contract access the dashboard needs.
type Gateway interface {
	TokenInfo(ctx context.Context, contractAddress string) (*gateway.TokenInfo, error)
	TokenBalance(ctx context.Context, contractAddress, user string) (*big.Int, error)
	Transfer(ctx context.Context, r gateway.TransferRequest) (gateway.Outcome, error)
	Mint(ctx context.Context, r gateway.MintRequest) (gateway.Outcome, error)
}

// Session reports the wallet connection.
type Session interface {
	State() session.State
}

// Controller drives the dashboard. It is safe for concurrent use.
type Controller struct {
	gw       Gateway
	sess     Session
	contract string
	delay    time.Duration
	timeout  time.Duration
	schedule func(time.Duration, func())
	log      zerolog.Logger

	mu       sync.Mutex
	view     View
	onChange []func(View)
}

// Option configures a Controller.
type Option func(*Controller)

// WithRefreshDelay sets the wait between a submission and the reload.
func WithRefreshDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLoadTimeout bounds the background reload.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithScheduler replaces time.AfterFunc for the delayed reload.
func WithScheduler(fn func(time.Duration, func())) Option {
	return func(c *Controller) { c.schedule = fn }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a controller for one contract. Token data is not loaded
// until Load is called.
func New(gw Gateway, sess Session, contract string, opts ...Option) *Controller {
	c := &Controller{
		gw:       gw,
		sess:     sess,
		contract: contract,
		delay:    DefaultRefreshDelay,
		timeout:  30 * time.Second,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		log:      zerolog.Nop(),
		view:     View{UILoading: true, Balance: new(big.Int)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// OnChange registers fn to run after every state change.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// SetInput updates a form.
func (c *Controller) SetInput(a Action, f Form) {
	c.update(func(v *View) {
		if a == ActionMint {
			v.Mint = f
		} else {
			v.Transfer = f
		}
	})
}

// Load reads token info and, when a wallet is connected, the user's token
// balance.
func (c *Controller) Load(ctx context.Context) error {
	c.update(func(v *View) { v.UILoading = true })

	info, err := c.gw.TokenInfo(ctx, c.contract)
	if err != nil {
		c.log.Error().Err(err).Str("contract", c.contract).Msg("loading token data")
		c.update(func(v *View) {
			v.UILoading = false
			v.Status = TxStatus{Kind: StatusError, Message: MsgLoadFailed}
		})
		return err
	}
	c.update(func(v *View) { v.Info = info })

	if s := c.sess.State(); s.Connected && s.Address != "" {
		bal, err := c.gw.TokenBalance(ctx, c.contract, s.Address)
		if err != nil {
			c.log.Error().Err(err).Str("address", s.Address).Msg("loading token balance")
			c.update(func(v *View) {
				v.UILoading = false
				v.Status = TxStatus{Kind: StatusError, Message: MsgLoadFailed}
			})
			return err
		}
		c.update(func(v *View) { v.Balance = bal })
	} else {
		c.update(func(v *View) { v.Balance = new(big.Int) })
	}

	c.update(func(v *View) { v.UILoading = false })
	return nil
}

// Submit sends the transfer or mint form through the wallet. It blocks until
// the wallet reports an outcome. Only one submission runs at a time; others
// get ErrBusy.
func (c *Controller) Submit(ctx context.Context, a Action) (gateway.Outcome, error) {
	v := c.View()
	if v.Loading {
		return gateway.Outcome{}, ErrBusy
	}
	form := v.Transfer
	if a == ActionMint {
		form = v.Mint
	}
	sender := c.sess.State()
	amountStr := strings.TrimSpace(form.Amount)
	recipient := strings.TrimSpace(form.Recipient)
	if amountStr == "" || recipient == "" || !sender.Connected || sender.Address == "" || v.Info == nil {
		return gateway.Outcome{}, ErrIncomplete
	}

	amount, err := units.ParseUnits(amountStr, int(v.Info.Decimals))
	if err != nil {
		c.fail(fmt.Sprintf("Invalid amount: %v", err))
		return gateway.Outcome{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if amount.Sign() <= 0 {
		c.fail(MsgZeroAmount)
		return gateway.Outcome{}, ErrInvalidAmount
	}

	if !c.begin() {
		return gateway.Outcome{}, ErrBusy
	}

	var out gateway.Outcome
	if a == ActionMint {
		out, err = c.gw.Mint(ctx, gateway.MintRequest{Contract: c.contract, Amount: amount, Recipient: recipient})
	} else {
		out, err = c.gw.Transfer(ctx, gateway.TransferRequest{Contract: c.contract, Amount: amount, Recipient: recipient, Sender: sender.Address})
	}

	switch {
	case err != nil:
		msg := err.Error()
		if msg == "" {
			msg = MsgUnknown
		}
		c.update(func(v *View) {
			v.Loading = false
			v.Status = TxStatus{Kind: StatusError, Message: msg}
		})
		return out, err

	case out.Status == gateway.Canceled:
		c.update(func(v *View) {
			v.Loading = false
			v.Status = TxStatus{Kind: StatusError, Message: MsgRejected}
		})
		return out, nil
	}

	c.update(func(v *View) {
		v.Loading = false
		v.LastTxID = out.TxID
		v.Status = TxStatus{Kind: StatusSuccess, Message: SubmittedMessage(out.TxID)}
		if a == ActionMint {
			v.Mint = Form{}
		} else {
			v.Transfer = Form{}
		}
	})
	c.log.Info().Str("action", a.String()).Str("txid", out.TxID).Dur("refresh_in", c.delay).Msg("transaction submitted")
	c.schedule(c.delay, c.reload)
	return out, nil
}

// SubmittedMessage is the success status for txid.
func SubmittedMessage(txid string) string {
	short := txid
	if len(short) > 10 {
		short = short[:10]
	}
	return "Transaction submitted! TXID: " + short + "..."
}

func (c *Controller) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.Load(ctx); err != nil {
		c.log.Warn().Err(err).Msg("delayed refresh failed")
	}
}

// begin sets Loading unless it is already set.
func (c *Controller) begin() bool {
	started := false
	c.update(func(v *View) {
		if v.Loading {
			return
		}
		v.Loading = true
		v.Status = TxStatus{}
		started = true
	})
	return started
}

func (c *Controller) fail(msg string) {
	c.update(func(v *View) { v.Status = TxStatus{Kind: StatusError, Message: msg} })
}

func (c *Controller) update(fn func(*View)) {
	c.mu.Lock()
	fn(&c.view)
	v := c.view
	listeners := append([]func(View){}, c.onChange...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(v)
	}
}
