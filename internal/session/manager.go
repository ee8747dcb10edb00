// Package session tracks whether a wallet is connected, and the connected
// account's address and STX balance.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

// ErrBalanceFetch is returned when the connected account's balance could not
// be read. The session is disconnected when this happens.
var ErrBalanceFetch = errors.New("failed to fetch STX balance")

// ErrSuperseded is returned by Refresh when the session was disconnected
// while the balance was loading. The stale result is dropped.
var ErrSuperseded = errors.New("session changed during refresh")

// DefaultBalance is shown while disconnected.
const DefaultBalance = "0.000000"

// State is a snapshot of the session.
type State struct {
	Connected bool
	Address   string // empty while disconnected
	Balance   string // micro-STX formatted with 6 decimals
}

// Disconnected is the zero session.
func Disconnected() State {
	return State{Balance: DefaultBalance}
}

// Wallet is the wallet boundary the session drives.
type Wallet interface {
	Connect(ctx context.Context, app wallet.AppDetails) (wallet.UserData, error)
	IsSignedIn() bool
	LoadUserData() (wallet.UserData, error)
	SignOut() error
}

// BalanceSource reads an account's micro-STX balance.
type BalanceSource interface {
	STXBalance(ctx context.Context, address string) (string, error)
}

// Manager owns the connection lifecycle. It is safe for concurrent use.
type Manager struct {
	wallet   Wallet
	balances BalanceSource
	net      *network.Network
	app      wallet.AppDetails
	log      zerolog.Logger

	mu        sync.Mutex
	state     State
	gen       uint64 // bumped on every disconnect
	listeners []func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithAppDetails sets the app identity shown in the wallet prompt.
func WithAppDetails(app wallet.AppDetails) Option {
	return func(m *Manager) { m.app = app }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// New creates a disconnected session manager. Call Restore to pick up a
// session saved by a previous run.
func New(w Wallet, balances BalanceSource, net *network.Network, opts ...Option) *Manager {
	m := &Manager{
		wallet:   w,
		balances: balances,
		net:      net,
		log:      zerolog.Nop(),
		state:    Disconnected(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// OnChange registers fn to be called after every state change.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Restore refreshes once if a previous session is stored. It reports
// whether the session ended up connected.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if !m.wallet.IsSignedIn() {
		return false, nil
	}
	if err := m.Refresh(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Connect asks the wallet to connect and then loads the balance. A rejected
// prompt returns wallet.ErrRejected and leaves the session disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	if _, err := m.wallet.Connect(ctx, m.app); err != nil {
		return err
	}
	return m.Refresh(ctx)
}

// Disconnect signs out and resets to the disconnected defaults. Calling it
// while disconnected is a no-op.
func (m *Manager) Disconnect() error {
	var err error
	if m.wallet.IsSignedIn() {
		err = m.wallet.SignOut()
	}
	m.mu.Lock()
	m.gen++
	m.publish(Disconnected())
	return err
}

// Refresh reloads the address and STX balance of the signed-in user. Any
// failure disconnects the session. A Disconnect that lands while the balance
// is loading wins, and Refresh returns ErrSuperseded.
func (m *Manager) Refresh(ctx context.Context) error {
	gen := m.generation()

	user, err := m.wallet.LoadUserData()
	if err != nil {
		return m.fail(gen, err)
	}

	address := user.AddressFor(m.net.IsMainnet())
	if address == "" {
		return m.fail(gen, fmt.Errorf("%w: session has no %s address", ErrBalanceFetch, m.net.Name))
	}

	micro, err := m.balances.STXBalance(ctx, address)
	if err != nil {
		return m.fail(gen, fmt.Errorf("%w: %w", ErrBalanceFetch, err))
	}
	balance, err := units.FormatMicroSTX(micro)
	if err != nil {
		return m.fail(gen, fmt.Errorf("%w: %w", ErrBalanceFetch, err))
	}

	if !m.commitIf(gen, State{Connected: true, Address: address, Balance: balance}) {
		m.log.Debug().Str("address", address).Msg("session disconnected during refresh, dropping result")
		return ErrSuperseded
	}
	return nil
}

// Poll refreshes every interval until ctx is done or the session drops.
func (m *Manager) Poll(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !m.State().Connected {
				return
			}
			if err := m.Refresh(ctx); err != nil {
				return
			}
		}
	}
}

func (m *Manager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// fail tears the session down unless a newer disconnect already did.
func (m *Manager) fail(gen uint64, cause error) error {
	if m.generation() != gen {
		return ErrSuperseded
	}
	m.log.Warn().Err(cause).Msg("session refresh failed, disconnecting")
	if err := m.Disconnect(); err != nil {
		m.log.Error().Err(err).Msg("sign out failed")
	}
	return cause
}

// commitIf commits s only if no disconnect happened since gen was read.
func (m *Manager) commitIf(gen uint64, s State) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	m.publish(s)
	return true
}

// publish stores s and notifies listeners. m.mu must be held; it is
// released before the listeners run.
func (m *Manager) publish(s State) {
	changed := s != m.state
	m.state = s
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(s)
	}
}
