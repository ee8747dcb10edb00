package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/stxtoken/internal/dashboard"
	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/session"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

// ErrNotAttached is returned by a TUIApprover used outside a running
// dashboard.
var ErrNotAttached = errors.New("approver is not attached to a running dashboard")

// TokenDashConfig wires the token dashboard.
type TokenDashConfig struct {
	Controller *dashboard.Controller
	Session    *session.Manager
	Network    *network.Network
	Contract   string
	Approver   *TUIApprover
	// RefreshEvery re-reads balances and token data. Zero disables it.
	RefreshEvery time.Duration
}

// ---------------------------------------------------------------------------
// Approvals
// ---------------------------------------------------------------------------

// approvalMsg asks the running dashboard for a decision. The reply is the
// chosen wallet index for connections, 0 for an approved call, or -1.
type approvalMsg struct {
	title  string
	body   string
	picker *pickerModel
	reply  chan int
}

// TUIApprover answers wallet prompts from inside the token dashboard.
type TUIApprover struct {
	mainnet bool

	mu   sync.Mutex
	send func(tea.Msg)
}

// NewTUIApprover returns an approver that is attached by RunTokenDash.
func NewTUIApprover(mainnet bool) *TUIApprover {
	return &TUIApprover{mainnet: mainnet}
}

func (a *TUIApprover) attach(send func(tea.Msg)) {
	a.mu.Lock()
	a.send = send
	a.mu.Unlock()
}

func (a *TUIApprover) ask(ctx context.Context, req *approvalMsg) (int, error) {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()
	if send == nil {
		return -1, ErrNotAttached
	}

	send(req)
	select {
	case i := <-req.reply:
		return i, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// ApproveConnect shows the wallet list inside the dashboard.
func (a *TUIApprover) ApproveConnect(ctx context.Context, app wallet.AppDetails, wallets []*wallet.Wallet) (*wallet.Wallet, error) {
	items, start := WalletItems(wallets, a.mainnet)
	picker := newPickerModel(app.Name+" wants to connect. Choose a wallet", items, start)
	i, err := a.ask(ctx, &approvalMsg{picker: &picker, reply: make(chan int, 1)})
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(wallets) {
		return nil, wallet.ErrRejected
	}
	return wallets[i], nil
}

// ApproveCall shows the call preview inside the dashboard.
func (a *TUIApprover) ApproveCall(ctx context.Context, app wallet.AppDetails, p wallet.CallPreview) error {
	i, err := a.ask(ctx, &approvalMsg{
		title: "Approve contract call",
		body:  RenderCallPreview(app, p),
		reply: make(chan int, 1),
	})
	if err != nil {
		return err
	}
	if i != 0 {
		return wallet.ErrRejected
	}
	return nil
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

type (
	viewMsg        dashboard.View
	stateMsg       session.State
	refreshTickMsg struct{}
	frameMsg       struct{}
	connectDoneMsg struct{ err error }
	submitDoneMsg  struct{ err error }
	loadDoneMsg    struct{ err error }
)

const (
	fieldAmount = iota
	fieldRecipient
)

type tokenDashModel struct {
	cfg   TokenDashConfig
	ctx   context.Context
	view  dashboard.View
	state session.State

	tab      dashboard.Action
	field    int
	prompt   *approvalMsg
	busy     string // shown while connecting
	flash    string
	frame    int
	quitting bool
}

func newTokenDashModel(ctx context.Context, cfg TokenDashConfig) tokenDashModel {
	return tokenDashModel{
		cfg:   cfg,
		ctx:   ctx,
		view:  cfg.Controller.View(),
		state: cfg.Session.State(),
	}
}

func (m tokenDashModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.refreshTick(), frameTick())
}

func (m tokenDashModel) loadCmd() tea.Cmd {
	ctrl := m.cfg.Controller
	ctx := m.ctx
	return func() tea.Msg { return loadDoneMsg{err: ctrl.Load(ctx)} }
}

func (m tokenDashModel) refreshTick() tea.Cmd {
	if m.cfg.RefreshEvery <= 0 {
		return nil
	}
	return tea.Tick(m.cfg.RefreshEvery, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func frameTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return frameMsg{} })
}

// refreshCmd re-reads the STX balance, then token data.
func (m tokenDashModel) refreshCmd() tea.Cmd {
	sess, ctrl, ctx := m.cfg.Session, m.cfg.Controller, m.ctx
	return func() tea.Msg {
		if sess.State().Connected {
			// A failed refresh disconnects the session; the dashboard
			// follows through stateMsg.
			_ = sess.Refresh(ctx)
		}
		return loadDoneMsg{err: ctrl.Load(ctx)}
	}
}

func (m tokenDashModel) connectCmd() tea.Cmd {
	sess, ctx := m.cfg.Session, m.ctx
	return func() tea.Msg { return connectDoneMsg{err: sess.Connect(ctx)} }
}

func (m tokenDashModel) submitCmd() tea.Cmd {
	ctrl, ctx, tab := m.cfg.Controller, m.ctx, m.tab
	return func() tea.Msg {
		_, err := ctrl.Submit(ctx, tab)
		return submitDoneMsg{err: err}
	}
}

func (m tokenDashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.view = dashboard.View(msg)

	case stateMsg:
		was := m.state.Connected
		m.state = session.State(msg)
		if was != m.state.Connected {
			return m, m.loadCmd()
		}

	case *approvalMsg:
		m.prompt = msg
		m.busy = ""

	case refreshTickMsg:
		return m, tea.Batch(m.refreshCmd(), m.refreshTick())

	case frameMsg:
		m.frame++
		return m, frameTick()

	case connectDoneMsg:
		m.busy = ""
		switch {
		case errors.Is(msg.err, wallet.ErrRejected):
			m.flash = "Connection rejected."
		case msg.err != nil:
			m.flash = "Connect failed: " + msg.err.Error()
		}

	case submitDoneMsg:
		switch {
		case errors.Is(msg.err, dashboard.ErrIncomplete):
			m.flash = "Fill in amount and recipient, and connect a wallet first."
		case errors.Is(msg.err, dashboard.ErrBusy):
			m.flash = "A transaction is already waiting on the wallet."
		}

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m tokenDashModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.prompt
	answer := func(i int) {
		p.reply <- i
		m.prompt = nil
	}

	if msg.String() == "ctrl+c" {
		answer(-1)
		m.quitting = true
		return m, tea.Quit
	}

	if p.picker == nil {
		switch msg.String() {
		case "y", "Y", "enter":
			answer(0)
		case "n", "N", "esc":
			answer(-1)
		}
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		p.picker.cursor = p.picker.next(p.picker.cursor, -1)
	case "down", "j":
		p.picker.cursor = p.picker.next(p.picker.cursor, 1)
	case "enter", " ":
		if c := p.picker.cursor; c < len(p.picker.items) && !p.picker.items[c].Disabled {
			answer(c)
		}
	case "esc", "q":
		answer(-1)
	}
	return m, nil
}

func (m tokenDashModel) form() dashboard.Form {
	if m.tab == dashboard.ActionMint {
		return m.view.Mint
	}
	return m.view.Transfer
}

func (m *tokenDashModel) edit(fn func(*string)) {
	f := m.form()
	if m.field == fieldAmount {
		fn(&f.Amount)
	} else {
		fn(&f.Recipient)
	}
	m.cfg.Controller.SetInput(m.tab, f)
	m.view = m.cfg.Controller.View()
}

func (m tokenDashModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		if m.tab == dashboard.ActionTransfer {
			m.tab = dashboard.ActionMint
		} else {
			m.tab = dashboard.ActionTransfer
		}
		m.field = fieldAmount

	case "up", "down", "shift+tab":
		m.field = 1 - m.field

	case "enter":
		if m.view.Loading {
			return m, nil
		}
		return m, m.submitCmd()

	case "ctrl+r":
		return m, m.refreshCmd()

	case "ctrl+w":
		if m.state.Connected {
			if err := m.cfg.Session.Disconnect(); err != nil {
				m.flash = "Disconnect failed: " + err.Error()
			}
			m.state = m.cfg.Session.State()
			return m, m.loadCmd()
		}
		if m.busy != "" {
			return m, nil
		}
		m.busy = "Connecting wallet…"
		return m, m.connectCmd()

	case "ctrl+e":
		target := m.cfg.Network.AddressURL(m.cfg.Contract)
		if m.view.LastTxID != "" {
			target = m.cfg.Network.TxURL(m.view.LastTxID)
		}
		if err := OpenBrowser(target); err != nil {
			m.flash = err.Error()
		} else {
			m.flash = "Opening explorer…"
		}

	case "ctrl+y":
		if m.view.LastTxID == "" {
			m.flash = "No transaction yet"
			break
		}
		if err := CopyToClipboard(m.view.LastTxID); err != nil {
			m.flash = "Copy failed: " + err.Error()
		} else {
			m.flash = "Copied txid"
		}

	case "backspace":
		m.edit(func(s *string) {
			if r := []rune(*s); len(r) > 0 {
				*s = string(r[:len(r)-1])
			}
		})

	default:
		if msg.Type == tea.KeyRunes {
			m.edit(func(s *string) { *s += string(msg.Runes) })
		}
	}
	return m, nil
}

func (m tokenDashModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleBrand.Render(" stxtoken") + "  " + NetworkName(m.cfg.Network.Name) + "\n\n")

	if m.state.Connected {
		sb.WriteString(" " + Success("Connected") + "  " + Addr(m.state.Address) +
			"  " + Val(m.state.Balance+" STX") + "\n\n")
	} else {
		sb.WriteString(" " + Meta("Wallet not connected. Press ctrl+w to connect.") + "\n\n")
	}

	sb.WriteString(m.tokenBlock())
	sb.WriteString("\n")

	if m.prompt != nil {
		sb.WriteString(m.promptView())
	} else {
		sb.WriteString(m.formView())
	}

	sb.WriteString("\n")
	switch {
	case m.busy != "":
		sb.WriteString(" " + StyleWarning.Render(spinnerFrames[m.frame%len(spinnerFrames)]+" "+m.busy) + "\n")
	case m.view.Loading:
		sb.WriteString(" " + StyleWarning.Render(spinnerFrames[m.frame%len(spinnerFrames)]+" Waiting for wallet…") + "\n")
	case m.view.Status.Kind == dashboard.StatusSuccess:
		sb.WriteString(" " + Success(m.view.Status.Message) + "\n")
	case m.view.Status.Kind == dashboard.StatusError:
		sb.WriteString(" " + Err(m.view.Status.Message) + "\n")
	}
	if m.flash != "" {
		sb.WriteString(" " + Info(m.flash) + "\n")
	}

	sb.WriteString("\n" + StyleMeta.Render(" [ tab ] transfer/mint  [ ↑↓ ] field  [ enter ] submit  "+
		"[ ctrl+w ] connect/disconnect  [ ctrl+r ] refresh  [ ctrl+e ] explorer  [ ctrl+y ] copy txid  [ esc ] quit") + "\n")
	return sb.String()
}

func (m tokenDashModel) tokenBlock() string {
	if m.view.UILoading && m.view.Info == nil {
		return " " + StyleWarning.Render(spinnerFrames[m.frame%len(spinnerFrames)]+" Loading token data…") + "\n"
	}
	info := m.view.Info
	if info == nil {
		return " " + Meta("No token data. Press ctrl+r to retry.") + "\n"
	}

	decimals := int(info.Decimals)
	balance := "0"
	if m.view.Balance != nil {
		balance = units.FormatUnits(m.view.Balance, decimals)
	}
	supply := "0"
	if info.TotalSupply != nil {
		supply = units.FormatUnits(info.TotalSupply, decimals)
	}
	return KeyValueBlock(info.Name, [][2]string{
		{"Symbol", info.Symbol},
		{"Decimals", fmt.Sprint(info.Decimals)},
		{"Total supply", supply + " " + info.Symbol},
		{"Contract", info.ContractAddress},
		{"Your balance", balance + " " + info.Symbol},
	})
}

func (m tokenDashModel) formView() string {
	var sb strings.Builder

	tabs := []dashboard.Action{dashboard.ActionTransfer, dashboard.ActionMint}
	sb.WriteString(" ")
	for _, a := range tabs {
		label := " " + strings.ToUpper(a.String()[:1]) + a.String()[1:] + " "
		if a == m.tab {
			sb.WriteString(StyleSelected.Render(label))
		} else {
			sb.WriteString(StyleMeta.Render(label))
		}
		sb.WriteString(" ")
	}
	sb.WriteString("\n\n")

	f := m.form()
	fields := []struct{ label, value string }{
		{"Amount", f.Amount},
		{"Recipient", f.Recipient},
	}
	for i, fl := range fields {
		cursor := "  "
		value := fl.value
		if i == m.field {
			cursor = "▸ "
			value += "█"
		}
		sb.WriteString(" " + cursor + StyleMeta.Render(fmt.Sprintf("%-10s", fl.label)) + " " + StyleAddress.Render(value) + "\n")
	}
	if hint := m.amountHint(f.Amount); hint != "" {
		sb.WriteString("\n   " + hint + "\n")
	}
	return StyleBorder.Render(sb.String()) + "\n"
}

// amountHint previews the typed amount as it will be sent, or flags it.
func (m tokenDashModel) amountHint(amount string) string {
	amount = strings.TrimSpace(amount)
	switch {
	case amount == "":
		return ""
	case !units.IsValidAmount(amount):
		return StyleError.Render("Enter a number greater than 0.")
	case m.view.Info == nil:
		return ""
	}
	info := m.view.Info
	if _, err := units.ParseUnits(amount, int(info.Decimals)); err != nil {
		return StyleError.Render(fmt.Sprintf("%s has %d decimals.", info.Symbol, info.Decimals))
	}
	return StyleMeta.Render("= " + units.FormatTokenAmount(amount, int(info.Decimals)) + " " + info.Symbol)
}

func (m tokenDashModel) promptView() string {
	p := m.prompt
	if p.picker != nil {
		return p.picker.View()
	}
	return StyleTitle.Render(" "+p.title) + "\n" + p.body + "\n\n" +
		StyleMeta.Render(" [ y / enter ] approve   [ n / esc ] reject") + "\n"
}

// watch calls send with a fresh snapshot after every poke. poke never
// blocks, so listeners may run inside Update.
func watch(ctx context.Context, send func(tea.Msg), snapshot func() tea.Msg) (poke func()) {
	dirty := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
				send(snapshot())
			}
		}
	}()
	return func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}
}

// RunTokenDash runs the interactive token dashboard until the user quits.
func RunTokenDash(ctx context.Context, cfg TokenDashConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newTokenDashModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if cfg.Approver != nil {
		cfg.Approver.attach(p.Send)
		defer cfg.Approver.attach(nil)
	}

	pokeView := watch(ctx, p.Send, func() tea.Msg { return viewMsg(cfg.Controller.View()) })
	pokeState := watch(ctx, p.Send, func() tea.Msg { return stateMsg(cfg.Session.State()) })
	cfg.Controller.OnChange(func(dashboard.View) { pokeView() })
	cfg.Session.OnChange(func(session.State) { pokeState() })

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
