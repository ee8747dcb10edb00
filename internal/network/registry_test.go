package network_test

import (
	"testing"

	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllNetworks(t *testing.T) {
	r := network.NewRegistry()
	assert.Len(t, r.All(), 3)
}

func TestRegistryGetByName(t *testing.T) {
	r := network.NewRegistry()

	tests := []struct {
		name    string
		api     string
		mainnet bool
	}{
		{"mainnet", "https://api.mainnet.hiro.so", true},
		{"testnet", "https://api.testnet.hiro.so", false},
		{"DevNet", "http://localhost:3999", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := r.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.api, n.APIURL)
			assert.Equal(t, tt.mainnet, n.IsMainnet())
		})
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	_, err := network.NewRegistry().GetByName("regtest")
	assert.ErrorIs(t, err, network.ErrNetworkNotFound)
}

func TestVersionBytes(t *testing.T) {
	r := network.NewRegistry()
	main, _ := r.GetByName("mainnet")
	test, _ := r.GetByName("testnet")
	assert.Equal(t, tx.Mainnet, main.Params)
	assert.Equal(t, uint32(0x80000000), test.Params.ChainID)
	assert.Equal(t, byte(26), test.Params.AddressVersion)
}

func TestTxURL(t *testing.T) {
	n, err := network.NewRegistry().GetByName("testnet")
	require.NoError(t, err)
	assert.Equal(t, "https://explorer.hiro.so/txid/0xabc?chain=testnet", n.TxURL("abc"))
	assert.Equal(t, "https://explorer.hiro.so/txid/0xabc?chain=testnet", n.TxURL("0xabc"))
}

func TestDevnetLinkCarriesAPI(t *testing.T) {
	n, err := network.NewRegistry().GetByName("devnet")
	require.NoError(t, err)
	assert.Contains(t, n.AddressURL("ST1"), "api=http%3A%2F%2Flocalhost%3A3999")
}

func TestWithAPIURLCopies(t *testing.T) {
	r := network.NewRegistry()
	n, _ := r.GetByName("testnet")
	custom := n.WithAPIURL("http://node:3999/")
	assert.Equal(t, "http://node:3999", custom.APIURL)
	assert.Equal(t, "https://api.testnet.hiro.so", n.APIURL, "registry entry must not change")
}
