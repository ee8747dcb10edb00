package cmd

import (
	"encoding/hex"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/wallet"
)

const issuer = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM"

// isolate points the CLI at a fresh config dir and clears overrides.
func isolate(t *testing.T, apiURL string) string {
	t.Helper()
	for _, k := range []string{"NETWORK", "API_KEY", "CONTRACT", "WALLET", "LOG_LEVEL"} {
		t.Setenv(config.EnvPrefix+"_"+k, "")
	}
	t.Setenv(config.EnvPrefix+"_API_URL", apiURL)
	t.Setenv(config.EnvConfigDir, "")
	t.Chdir(t.TempDir())
	testnet, mainnet, verbose, tokenContract = false, false, false, ""
	// Flag groups are checked against Changed, which outlives Execute.
	for _, name := range []string{"testnet", "mainnet"} {
		rootCmd.PersistentFlags().Lookup(name).Changed = false
	}
	tokenCmd.PersistentFlags().Lookup("contract").Changed = false
	return t.TempDir()
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// fakeNode answers the read-only calls of a SIP-010 token.
func fakeNode(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	results := map[string]string{
		"get-name":           "0x070d00000005426562656b",
		"get-symbol":         "0x070d0000000342424b",
		"get-decimals":       "0x070100000000000000000000000000000006",
		"get-total-supply":   "0x0701000000000000000000000000004c4b40",
		"get-balance":        "0x0701000000000000000000000000004c4b40",
		"get-contract-owner": "0x0705" + "1a" + "6d78de7b0625dfbfc16c3a8a5735f6dc3dc3f2ce",
	}
	var (
		mu    sync.Mutex
		calls []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/names/alice.btc" {
			_, _ = w.Write([]byte(`{"address":"` + issuer + `"}`))
			return
		}
		parts := strings.Split(r.URL.Path, "/")
		fn := parts[len(parts)-1]
		mu.Lock()
		calls = append(calls, fn)
		mu.Unlock()
		res, ok := results[fn]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"okay":true,"result":"` + res + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), calls...)
	}
}

func TestTokenInfoCommand(t *testing.T) {
	srv, calls := fakeNode(t)
	dir := isolate(t, srv.URL)

	require.NoError(t, execute(t, "--config", dir, "token", "info"))
	assert.ElementsMatch(t,
		[]string{"get-name", "get-symbol", "get-decimals", "get-total-supply"},
		calls())
}

func TestTokenBalanceOfAddress(t *testing.T) {
	srv, calls := fakeNode(t)
	dir := isolate(t, srv.URL)

	require.NoError(t, execute(t, "--config", dir, "token", "balance", issuer))
	assert.Contains(t, calls(), "get-balance")
}

func TestTokenContractFlagRejectsBadID(t *testing.T) {
	srv, _ := fakeNode(t)
	dir := isolate(t, srv.URL)

	err := execute(t, "--config", dir, "token", "info", "--contract", "not-a-contract")
	require.Error(t, err)
	tokenContract = ""
}

func TestConfigSetNetworkModePersists(t *testing.T) {
	dir := isolate(t, "")

	require.NoError(t, execute(t, "--config", dir, "config", "set-network-mode", "mainnet"))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", loaded.NetworkMode)

	require.Error(t, execute(t, "--config", dir, "config", "set-network-mode", "regtest"))
}

func TestConfigSetContractPersists(t *testing.T) {
	dir := isolate(t, "")
	contract := issuer + ".other-token"

	require.NoError(t, execute(t, "--config", dir, "config", "set-contract", contract))

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, contract, loaded.Contract)
}

func TestNetworkOverrideFlagsAreExclusive(t *testing.T) {
	dir := isolate(t, "")
	err := execute(t, "--config", dir, "--testnet", "--mainnet", "network", "list")
	require.Error(t, err)
	testnet, mainnet = false, false
}

func TestResolveRecipient(t *testing.T) {
	srv, _ := fakeNode(t)
	dir := isolate(t, srv.URL)

	var err error
	cfg, err = config.Load(dir)
	require.NoError(t, err)
	a, err := newApp(nil)
	require.NoError(t, err)

	got, err := a.resolveRecipient(t.Context(), " "+issuer+" ")
	require.NoError(t, err)
	assert.Equal(t, issuer, got)

	got, err = a.resolveRecipient(t.Context(), "alice.btc")
	require.NoError(t, err)
	assert.Equal(t, issuer, got)

	// Contract principals pass through untouched for the gateway to check.
	got, err = a.resolveRecipient(t.Context(), issuer+".vault")
	require.NoError(t, err)
	assert.Equal(t, issuer+".vault", got)

	_, err = a.resolveRecipient(t.Context(), "bob.btc")
	require.Error(t, err)
}

func TestNumberedWords(t *testing.T) {
	phrase := "one two three four five six"
	got := numberedWords(phrase)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " 1. one")
	assert.Contains(t, lines[0], " 4. four")
	assert.Contains(t, lines[1], " 5. five")
	assert.Contains(t, lines[1], " 6. six")
	assert.Empty(t, numberedWords(""))
}

func TestWalletTypeLabel(t *testing.T) {
	assert.Equal(t, "read-write", walletTypeLabel(wallet.TypeSigning))
	assert.Equal(t, wallet.TypeWatchOnly, walletTypeLabel(wallet.TypeWatchOnly))
}

func TestErrLine(t *testing.T) {
	plain := errLine(errors.New("boom"))
	assert.Contains(t, plain, "boom")

	gwErr := &gateway.Error{Kind: gateway.ErrTokenInfoFetch, Cause: errors.New("connection refused")}
	wrapped := errLine(gwErr)
	assert.Contains(t, wrapped, gwErr.Error())
	assert.Contains(t, wrapped, "connection refused")
}

func TestTokenInfoBlock(t *testing.T) {
	out := tokenInfoBlock(&gateway.TokenInfo{
		Name:            "Bebek",
		Symbol:          "BBK",
		Decimals:        6,
		TotalSupply:     big.NewInt(5_000_000),
		ContractAddress: issuer + ".bebek-token",
	})
	assert.Contains(t, out, "Bebek")
	assert.Contains(t, out, "5.000000 BBK")
	assert.Contains(t, out, "bebek-token")
}

func TestWalletVerifyCommand(t *testing.T) {
	dir := isolate(t, "")

	mgr := wallet.NewManager(wallet.WithInMemoryStore(), wallet.WithKeystore(wallet.NewInMemoryKeystore()))
	w, err := mgr.AddWithKey("hot", "47382d0211f3bbb11812b5e60b696a93d7ad0a91cdeb2162f7d69d4adef48b5d")
	require.NoError(t, err)
	sig, err := wallet.SignMessage(w, mgr, []byte("hello world"))
	require.NoError(t, err)
	sigHex := hex.EncodeToString(sig)

	t.Cleanup(func() { verifySig, verifyAddress, signJSON = "", "", false })

	require.NoError(t, execute(t, "--config", dir, "wallet", "verify", "hello world",
		"--sig", sigHex, "--address", w.Address(false)))

	// Same key on mainnet is accepted too.
	require.NoError(t, execute(t, "--config", dir, "wallet", "verify", "hello world",
		"--sig", sigHex, "--address", w.Address(true)))

	err = execute(t, "--config", dir, "wallet", "verify", "hello world!",
		"--sig", sigHex, "--address", w.Address(false))
	assert.ErrorIs(t, err, errSignerMismatch)
}
