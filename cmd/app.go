package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/dashboard"
	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/logger"
	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/session"
	"github.com/Mohsinsiddi/stxtoken/internal/stacks"
	"github.com/Mohsinsiddi/stxtoken/internal/ui"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

const sessionFile = "session.json"

// app is everything a token command needs, built from config in one place.
type app struct {
	net       *network.Network
	client    *stacks.Client
	wallets   *wallet.Manager
	connector *wallet.Connector
	session   *session.Manager
	gateway   *gateway.Gateway
}

// newApp wires config, network, API client, wallet and session for the
// active network. approver answers wallet prompts.
func newApp(approver wallet.Approver) (*app, error) {
	net, err := activeNetwork()
	if err != nil {
		return nil, err
	}

	client := newClient(net)
	wallets := newWalletManager()
	details := appDetails()

	connector := wallet.NewConnector(
		wallets,
		wallet.NewSessionFile(filepath.Join(cfg.Dir(), sessionFile)),
		approver,
		client,
		net.Params,
		wallet.WithFee(cfg.TxFee),
		wallet.WithNetworkName(net.Name),
		wallet.WithConnectorLogger(logger.Component("wallet")),
	)

	return &app{
		net:       net,
		client:    client,
		wallets:   wallets,
		connector: connector,
		session: session.New(connector, client, net,
			session.WithAppDetails(details),
			session.WithLogger(logger.Component("session")),
		),
		gateway: gateway.New(client, connector,
			gateway.WithAppDetails(details),
			gateway.WithAssetName(cfg.AssetName),
			gateway.WithLogger(logger.Component("gateway")),
		),
	}, nil
}

// controller returns a dashboard controller for the configured contract.
func (a *app) controller(opts ...dashboard.Option) *dashboard.Controller {
	opts = append([]dashboard.Option{
		dashboard.WithRefreshDelay(cfg.RefreshDelayDuration()),
		dashboard.WithLoadTimeout(config.ReadTimeout),
		dashboard.WithLogger(logger.Component("dashboard")),
	}, opts...)
	return dashboard.New(a.gateway, a.session, cfg.Contract, opts...)
}

// restore reconnects a stored session. A stale session is reported, not
// fatal.
func (a *app) restore(ctx context.Context) bool {
	ok, err := a.session.Restore(ctx)
	if err != nil {
		fmt.Println(ui.Warn("Stored session could not be restored: " + err.Error()))
		return false
	}
	return ok
}

// resolveRecipient accepts a Stacks address, a contract principal or a BNS
// name.
func (a *app) resolveRecipient(ctx context.Context, s string) (string, error) {
	s = strings.TrimSpace(s)
	head, _, isDotted := strings.Cut(s, ".")
	if !isDotted || units.ValidateStacksAddress(head) {
		return s, nil
	}
	addr, err := a.client.ResolveName(ctx, s)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", s, err)
	}
	fmt.Println(ui.Meta(fmt.Sprintf("  %s → %s", s, addr)))
	return addr, nil
}

func appDetails() wallet.AppDetails {
	return wallet.AppDetails{Name: cfg.AppName, Icon: cfg.AppIcon}
}

// activeNetwork returns the configured network with any API override.
func activeNetwork() (*network.Network, error) {
	net, err := network.NewRegistry().GetByName(cfg.NetworkMode)
	if err != nil {
		return nil, fmt.Errorf("unknown network mode %q: run `stxtoken config set-network-mode testnet`", cfg.NetworkMode)
	}
	return net.WithAPIURL(cfg.APIURL), nil
}

func newClient(net *network.Network) *stacks.Client {
	return stacks.NewClient(net.APIURL,
		stacks.WithAPIKey(cfg.APIKey),
		stacks.WithRateLimit(cfg.RateLimit),
		stacks.WithLogger(logger.Component("stacks")),
	)
}

// newWalletManager creates a Manager backed by the config-dir JSON store
// and the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(filepath.Join(cfg.Dir(), "keys"))),
	)
}

// errLine renders an error for the terminal. Gateway errors show their
// user-facing text with the cause underneath.
func errLine(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.Cause != nil {
		return ui.Err(gwErr.Error()) + "\n" + ui.Meta("  "+gwErr.Cause.Error())
	}
	return ui.Err(err.Error())
}
