package e2e_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	watchAddr = "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ"
	contract  = "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.bebek-token"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "stxtoken-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "stxtoken")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

type run struct {
	env   []string
	stdin string
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	return run{}.cli(t, configDir, args...)
}

func (r run) cli(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(cleanEnv(), "STXTOKEN_CONFIG_DIR="+configDir)
	cmd.Env = append(cmd.Env, r.env...)
	if r.stdin != "" {
		cmd.Stdin = strings.NewReader(r.stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// cleanEnv drops the developer's STXTOKEN_* overrides.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "STXTOKEN_") {
			env = append(env, kv)
		}
	}
	return env
}

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "stxtoken")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "stxtoken")
	for _, sub := range []string{"connect", "disconnect", "status", "token", "dashboard", "wallet", "network", "config"} {
		assert.Contains(t, strings.ToLower(out), sub)
	}
	assert.Contains(t, out, "--testnet")
	assert.Contains(t, out, "--mainnet")
}

func TestNetworkList(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "network", "list")
	require.NoError(t, err)

	for _, n := range []string{"mainnet", "testnet", "devnet", "api.testnet.hiro.so"} {
		assert.Contains(t, strings.ToLower(out), n, "network list should contain %s", n)
	}
}

func TestConfigSetNetworkMode(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "config", "set-network-mode", "mainnet")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"network_mode": "mainnet"`)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "mainnet")
}

func TestConfigSetNetworkModeInvalid(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-network-mode", "regtest")
	assert.Error(t, err)
}

func TestConfigSetContractInvalid(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "config", "set-contract", "bebek-token")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid contract")
}

func TestConfigListMasksAPIKey(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "config", "set-api-key", "super-secret-key")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "super-secret-key")
	assert.Contains(t, out, "********")
}

func TestEnvOverrideIsReported(t *testing.T) {
	dir := t.TempDir()
	out, err := run{env: []string{"STXTOKEN_NETWORK=mainnet"}}.cli(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "From environment")
	assert.Contains(t, out, "network_mode")
}

func TestTestnetMainnetMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "--testnet", "--mainnet", "network", "list")
	assert.Error(t, err)
}

func TestWalletAddListRemove(t *testing.T) {
	dir := t.TempDir()

	out, err := runCLI(t, dir, "wallet", "add", "savings", watchAddr)
	require.NoError(t, err, out)
	assert.Contains(t, out, "savings")

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "savings")
	assert.Contains(t, out, "watch-only")

	// Mainnet addresses are shown with --mainnet.
	out, err = runCLI(t, dir, "--mainnet", "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SP2J6ZY")

	out, err = run{stdin: "y\n"}.cli(t, dir, "wallet", "remove", "savings")
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallets")
}

func TestWalletAddRejectsBadAddress(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "wallet", "add", "bad", "0x802D8097eC1D49808F3c2c866020442891adde57")
	assert.Error(t, err)
}

func TestTokenInfoAgainstLocalAPI(t *testing.T) {
	results := map[string]string{
		"get-name":         "0x070d00000005426562656b",
		"get-symbol":       "0x070d0000000342424b",
		"get-decimals":     "0x070100000000000000000000000000000006",
		"get-total-supply": "0x0701000000000000000000000000004c4b40",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		res, ok := results[fn]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"okay":true,"result":"` + res + `"}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	out, err := run{env: []string{"STXTOKEN_API_URL=" + srv.URL}}.cli(t, dir, "token", "info", "--contract", contract)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Bebek")
	assert.Contains(t, out, "BBK")
	assert.Contains(t, out, "5.000000")
}

func TestTokenInfoUnreachableAPI(t *testing.T) {
	dir := t.TempDir()
	out, err := run{env: []string{"STXTOKEN_API_URL=http://127.0.0.1:1"}}.cli(t, dir, "token", "info")
	assert.Error(t, err)
	assert.Contains(t, out, "failed to fetch token information")
}

func TestTransferWithoutWallet(t *testing.T) {
	dir := t.TempDir()
	_, err := run{env: []string{"STXTOKEN_API_URL=http://127.0.0.1:1"}}.cli(t, dir, "token", "transfer", "1", watchAddr, "--yes")
	assert.Error(t, err)
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "nonexistent-command")
	assert.Error(t, err)
	assert.Contains(t, out, "unknown command")
}

func TestTokenHelpShowsTestnetFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "token", "transfer", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "--testnet")
	assert.Contains(t, out, "--yes")
	assert.Contains(t, out, "--contract")
}
