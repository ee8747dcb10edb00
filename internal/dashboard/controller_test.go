package dashboard_test

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stxtoken/internal/dashboard"
	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/session"
)

const (
	contractID = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.bebek-token"
	alice      = "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ"
	bob        = "STC5KHM41H6WHAST7MWWDD807YSPRQKJ68T330BQ"
)

type fakeGateway struct {
	mu         sync.Mutex
	infoErr    error
	balanceErr error
	outcome    gateway.Outcome
	submitErr  error
	infoCalls  int
	transfers  []gateway.TransferRequest
	mints      []gateway.MintRequest
}

func (f *fakeGateway) TokenInfo(context.Context, string) (*gateway.TokenInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &gateway.TokenInfo{Name: "Bebek Token", Symbol: "BEBEK", Decimals: 6, TotalSupply: big.NewInt(1e12), ContractAddress: contractID}, nil
}

func (f *fakeGateway) TokenBalance(context.Context, string, string) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return big.NewInt(2_500_000), nil
}

func (f *fakeGateway) Transfer(_ context.Context, r gateway.TransferRequest) (gateway.Outcome, error) {
	f.transfers = append(f.transfers, r)
	return f.outcome, f.submitErr
}

func (f *fakeGateway) Mint(_ context.Context, r gateway.MintRequest) (gateway.Outcome, error) {
	f.mints = append(f.mints, r)
	return f.outcome, f.submitErr
}

type fixedSession session.State

func (s fixedSession) State() session.State { return session.State(s) }

var connected = fixedSession{Connected: true, Address: alice, Balance: "1.000000"}

// captureScheduler records delayed reloads instead of running them.
type captureScheduler struct {
	delays []time.Duration
	fns    []func()
}

func (s *captureScheduler) schedule(d time.Duration, f func()) {
	s.delays = append(s.delays, d)
	s.fns = append(s.fns, f)
}

func loaded(t *testing.T, gw *fakeGateway, sess dashboard.Session, opts ...dashboard.Option) *dashboard.Controller {
	t.Helper()
	c := dashboard.New(gw, sess, contractID, opts...)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestNewStartsLoading(t *testing.T) {
	c := dashboard.New(&fakeGateway{}, connected, contractID)
	v := c.View()
	assert.True(t, v.UILoading)
	assert.Nil(t, v.Info)
}

func TestLoadConnected(t *testing.T) {
	c := loaded(t, &fakeGateway{}, connected)
	v := c.View()
	assert.False(t, v.UILoading)
	assert.Equal(t, "BEBEK", v.Info.Symbol)
	assert.Equal(t, "2500000", v.Balance.String())
}

func TestLoadDisconnectedSkipsBalance(t *testing.T) {
	gw := &fakeGateway{balanceErr: errors.New("should not be called")}
	c := loaded(t, gw, fixedSession(session.Disconnected()))
	assert.Equal(t, "0", c.View().Balance.String())
}

func TestLoadFailureSetsStatus(t *testing.T) {
	gw := &fakeGateway{infoErr: gateway.ErrTokenInfoFetch}
	c := dashboard.New(gw, connected, contractID)

	err := c.Load(context.Background())
	assert.ErrorIs(t, err, gateway.ErrTokenInfoFetch)
	v := c.View()
	assert.False(t, v.UILoading)
	assert.Equal(t, dashboard.TxStatus{Kind: dashboard.StatusError, Message: dashboard.MsgLoadFailed}, v.Status)
}

func TestSubmitIncompleteDoesNothing(t *testing.T) {
	gw := &fakeGateway{}
	c := loaded(t, gw, connected)

	_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	assert.ErrorIs(t, err, dashboard.ErrIncomplete)

	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})
	d := loaded(t, gw, fixedSession(session.Disconnected()))
	d.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})
	_, err = d.Submit(context.Background(), dashboard.ActionTransfer)
	assert.ErrorIs(t, err, dashboard.ErrIncomplete)

	assert.Empty(t, gw.transfers)
}

func TestSubmitZeroAmountBlockedLocally(t *testing.T) {
	for _, amt := range []string{"0", "0.000", "abc", "-1", "1.1234567"} {
		gw := &fakeGateway{}
		c := loaded(t, gw, connected)
		c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: amt, Recipient: bob})

		_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
		assert.ErrorIs(t, err, dashboard.ErrInvalidAmount, amt)
		assert.Empty(t, gw.transfers, amt)
		v := c.View()
		assert.Equal(t, dashboard.StatusError, v.Status.Kind, amt)
		assert.False(t, v.Loading)
	}
}

func TestSubmitTransferSuccess(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.Outcome{Status: gateway.Finished, TxID: "0x1234567890abcdef"}}
	sched := &captureScheduler{}
	c := loaded(t, gw, connected, dashboard.WithScheduler(sched.schedule))
	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1.5", Recipient: bob})
	c.SetInput(dashboard.ActionMint, dashboard.Form{Amount: "9", Recipient: alice})

	out, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	require.NoError(t, err)
	assert.Equal(t, gateway.Finished, out.Status)

	require.Len(t, gw.transfers, 1)
	r := gw.transfers[0]
	assert.Equal(t, "1500000", r.Amount.String())
	assert.Equal(t, alice, r.Sender)
	assert.Equal(t, bob, r.Recipient)
	assert.Equal(t, contractID, r.Contract)

	v := c.View()
	assert.False(t, v.Loading)
	assert.Equal(t, dashboard.TxStatus{Kind: dashboard.StatusSuccess, Message: "Transaction submitted! TXID: 0x12345678..."}, v.Status)
	assert.Equal(t, dashboard.Form{}, v.Transfer)
	assert.Equal(t, dashboard.Form{Amount: "9", Recipient: alice}, v.Mint, "only the submitted form resets")

	require.Equal(t, []time.Duration{dashboard.DefaultRefreshDelay}, sched.delays)
	before := gw.infoCalls
	sched.fns[0]()
	assert.Equal(t, before+1, gw.infoCalls)
}

func TestSubmitMint(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.Outcome{Status: gateway.Finished, TxID: "abc"}}
	sched := &captureScheduler{}
	c := loaded(t, gw, connected, dashboard.WithScheduler(sched.schedule), dashboard.WithRefreshDelay(time.Second))
	c.SetInput(dashboard.ActionMint, dashboard.Form{Amount: "2", Recipient: bob})

	_, err := c.Submit(context.Background(), dashboard.ActionMint)
	require.NoError(t, err)
	require.Len(t, gw.mints, 1)
	assert.Equal(t, "2000000", gw.mints[0].Amount.String())
	assert.Equal(t, "Transaction submitted! TXID: abc...", c.View().Status.Message)
	assert.Equal(t, []time.Duration{time.Second}, sched.delays)
}

func TestSubmitRejected(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.Outcome{Status: gateway.Canceled}}
	sched := &captureScheduler{}
	c := loaded(t, gw, connected, dashboard.WithScheduler(sched.schedule))
	form := dashboard.Form{Amount: "1", Recipient: bob}
	c.SetInput(dashboard.ActionTransfer, form)

	out, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	require.NoError(t, err)
	assert.Equal(t, gateway.Canceled, out.Status)

	v := c.View()
	assert.False(t, v.Loading)
	assert.Equal(t, dashboard.TxStatus{Kind: dashboard.StatusError, Message: "Transaction rejected by user."}, v.Status)
	assert.Equal(t, form, v.Transfer, "inputs are kept")
	assert.Empty(t, sched.delays, "no refresh")
}

func TestSubmitError(t *testing.T) {
	gw := &fakeGateway{submitErr: &gateway.Error{Kind: gateway.ErrTransactionSubmission, Cause: errors.New("nonce")}}
	sched := &captureScheduler{}
	c := loaded(t, gw, connected, dashboard.WithScheduler(sched.schedule))
	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})

	_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	assert.ErrorIs(t, err, gateway.ErrTransactionSubmission)

	v := c.View()
	assert.False(t, v.Loading)
	assert.Equal(t, "failed to submit transaction", v.Status.Message)
	assert.Empty(t, sched.delays)
}

func TestLoadingVisibleDuringSubmit(t *testing.T) {
	gw := &fakeGateway{outcome: gateway.Outcome{Status: gateway.Finished, TxID: "x"}}
	c := loaded(t, gw, connected, dashboard.WithScheduler(func(time.Duration, func()) {}))
	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})

	var sawLoading bool
	c.OnChange(func(v dashboard.View) {
		if v.Loading {
			sawLoading = true
		}
	})
	_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	require.NoError(t, err)
	assert.True(t, sawLoading)
	assert.False(t, c.View().Loading)
}

// slowGateway holds Transfer until release is closed.
type slowGateway struct {
	*fakeGateway
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *slowGateway) Transfer(ctx context.Context, r gateway.TransferRequest) (gateway.Outcome, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return gateway.Outcome{Status: gateway.Finished, TxID: "0xabc"}, nil
}

func TestSubmitWhileInFlightIsBusy(t *testing.T) {
	gw := &slowGateway{fakeGateway: &fakeGateway{}, entered: make(chan struct{}), release: make(chan struct{})}
	c := dashboard.New(gw, connected, contractID, dashboard.WithScheduler(func(time.Duration, func()) {}))
	require.NoError(t, c.Load(context.Background()))
	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})

	first := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
		first <- err
	}()
	<-gw.entered

	_, err := c.Submit(context.Background(), dashboard.ActionTransfer)
	assert.ErrorIs(t, err, dashboard.ErrBusy)
	_, err = c.Submit(context.Background(), dashboard.ActionMint)
	assert.ErrorIs(t, err, dashboard.ErrBusy)

	close(gw.release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), gw.calls.Load())
	assert.False(t, c.View().Loading)
}

func TestConcurrentSubmitsReachWalletOnce(t *testing.T) {
	gw := &slowGateway{fakeGateway: &fakeGateway{}, entered: make(chan struct{}), release: make(chan struct{})}
	c := dashboard.New(gw, connected, contractID, dashboard.WithScheduler(func(time.Duration, func()) {}))
	require.NoError(t, c.Load(context.Background()))
	c.SetInput(dashboard.ActionTransfer, dashboard.Form{Amount: "1", Recipient: bob})

	const n = 8
	var wg sync.WaitGroup
	var busy atomic.Int32
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Submit(context.Background(), dashboard.ActionTransfer); errors.Is(err, dashboard.ErrBusy) {
				busy.Add(1)
			}
		}()
	}
	<-gw.entered
	require.Eventually(t, func() bool { return busy.Load() == n-1 }, 2*time.Second, 5*time.Millisecond)
	close(gw.release)
	wg.Wait()

	assert.Equal(t, int32(1), gw.calls.Load())
	assert.Equal(t, int32(n-1), busy.Load())
}

func TestSubmittedMessageShortID(t *testing.T) {
	assert.Equal(t, "Transaction submitted! TXID: ab...", dashboard.SubmittedMessage("ab"))
}
