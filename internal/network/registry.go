// Package network holds the Stacks networks the tool can target.
package network

import (
	"errors"
	"net/url"
	"strings"

	"github.com/Mohsinsiddi/stxtoken/internal/tx"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the endpoints and version bytes for one Stacks network.
type Network struct {
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	APIURL       string    `json:"api_url"`
	ExplorerURL  string    `json:"explorer_url"`
	ExplorerName string    `json:"explorer_chain"` // value of the explorer's ?chain= parameter
	Params       tx.Params `json:"-"`
	// Faucet is the STX faucet for test networks (empty on mainnet).
	Faucet       string    `json:"faucet,omitempty"`
}

// IsMainnet reports whether the network uses mainnet address versions.
func (n *Network) IsMainnet() bool { return n.Params == tx.Mainnet }

// WithAPIURL returns a copy of n pointed at a different API root.
func (n Network) WithAPIURL(api string) *Network {
	if api != "" {
		n.APIURL = strings.TrimRight(api, "/")
	}
	return &n
}

// TxURL returns the explorer page for a transaction id.
func (n *Network) TxURL(txid string) string {
	if !strings.HasPrefix(txid, "0x") {
		txid = "0x" + txid
	}
	return n.explorerLink("/txid/" + txid)
}

// AddressURL returns the explorer page for an address or contract.
func (n *Network) AddressURL(addr string) string {
	return n.explorerLink("/address/" + addr)
}

func (n *Network) explorerLink(path string) string {
	q := url.Values{}
	q.Set("chain", n.ExplorerName)
	if n.Name == "devnet" {
		q.Set("api", n.APIURL)
	}
	return n.ExplorerURL + path + "?" + q.Encode()
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
}

// NewRegistry returns the registry of known networks.
func NewRegistry() *Registry {
	nets := allNetworks()
	r := &Registry{
		networks: nets,
		byName:   make(map[string]*Network, len(nets)),
	}
	for i := range r.networks {
		r.byName[r.networks[i].Name] = &r.networks[i]
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by name ("mainnet", "testnet", "devnet").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

func allNetworks() []Network {
	return []Network{
		{
			Name:         "mainnet",
			DisplayName:  "Stacks Mainnet",
			APIURL:       "https://api.mainnet.hiro.so",
			ExplorerURL:  "https://explorer.hiro.so",
			ExplorerName: "mainnet",
			Params:       tx.Mainnet,
		},
		{
			Name:         "testnet",
			DisplayName:  "Stacks Testnet",
			APIURL:       "https://api.testnet.hiro.so",
			ExplorerURL:  "https://explorer.hiro.so",
			ExplorerName: "testnet",
			Params:       tx.Testnet,
			Faucet:       "https://explorer.hiro.so/sandbox/faucet?chain=testnet",
		},
		{
			Name:         "devnet",
			DisplayName:  "Local Devnet",
			APIURL:       "http://localhost:3999",
			ExplorerURL:  "https://explorer.hiro.so",
			ExplorerName: "testnet",
			Params:       tx.Testnet,
		},
	}
}
