package stacks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

const testnetAddr = "ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ"

// newTestClient starts an httptest server with handler and returns a client
// pointed at it with rate limiting disabled.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRateLimit(0)}, opts...)
	return NewClient(srv.URL+"/", opts...)
}

// ---------------------------------------------------------------------------
// Client plumbing
// ---------------------------------------------------------------------------

func TestNewClientTrimsSlash(t *testing.T) {
	c := NewClient("https://api.testnet.hiro.so/")
	assert.Equal(t, "https://api.testnet.hiro.so", c.BaseURL())
}

func TestAPIKeyHeader(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"stx":{"balance":"1"}}`))
	}, WithAPIKey("secret"))

	_, err := c.STXBalance(context.Background(), testnetAddr)
	require.NoError(t, err)
	assert.Equal(t, "secret", got)
}

func TestOversizedBodyIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stx":{"balance":"1"},"pad":"`))
		_, _ = w.Write([]byte(strings.Repeat("x", maxBody)))
		_, _ = w.Write([]byte(`"}`))
	})
	_, err := c.STXBalance(context.Background(), testnetAddr)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestNoAPIKeyHeaderByDefault(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("x-api-key")
		_, _ = w.Write([]byte(`{"stx":{"balance":"1"}}`))
	})
	_, err := c.STXBalance(context.Background(), testnetAddr)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNon2xxIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.STXBalance(context.Background(), testnetAddr)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.STXBalance(ctx, testnetAddr)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

func TestSTXBalance(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/address/"+testnetAddr+"/balances", r.URL.Path)
		_, _ = w.Write([]byte(`{"stx":{"balance":"2500000","total_sent":"0"}}`))
	})
	bal, err := c.STXBalance(context.Background(), testnetAddr)
	require.NoError(t, err)
	assert.Equal(t, "2500000", bal)
}

func TestSTXBalanceMissingField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"fungible_tokens":{}}`))
	})
	_, err := c.STXBalance(context.Background(), testnetAddr)
	assert.Error(t, err)
}

func TestNextNonce(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extended/v1/address/"+testnetAddr+"/nonces", r.URL.Path)
		_, _ = w.Write([]byte(`{"possible_next_nonce":12,"last_executed_tx_nonce":11}`))
	})
	n, err := c.NextNonce(context.Background(), testnetAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), n)
}

func TestResolveName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/names/alice.btc" {
			_, _ = w.Write([]byte(`{"address":"` + testnetAddr + `","status":"name-register"}`))
			return
		}
		http.NotFound(w, r)
	})

	addr, err := c.ResolveName(context.Background(), "Alice.BTC")
	require.NoError(t, err)
	assert.Equal(t, testnetAddr, addr)

	_, err = c.ResolveName(context.Background(), "bob.btc")
	assert.ErrorContains(t, err, "no BNS record")

	_, err = c.ResolveName(context.Background(), "plain")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Read-only calls
// ---------------------------------------------------------------------------

func TestCallReadOnly(t *testing.T) {
	contract, err := clarity.ParseContractID(testnetAddr + ".simple-token")
	require.NoError(t, err)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/contracts/call-read/"+testnetAddr+"/simple-token/get-balance", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Sender    string   `json:"sender"`
			Arguments []string `json:"arguments"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testnetAddr, req.Sender)
		require.Len(t, req.Arguments, 1)
		assert.True(t, strings.HasPrefix(req.Arguments[0], "0x051a"))

		// (ok u42)
		_, _ = w.Write([]byte(`{"okay":true,"result":"0x07010000000000000000000000000000002a"}`))
	})

	who, err := clarity.ParseStandardPrincipal(testnetAddr)
	require.NoError(t, err)
	v, err := c.CallReadOnly(context.Background(), contract, "get-balance", testnetAddr, who)
	require.NoError(t, err)
	assert.Equal(t, "(ok u42)", v.String())
}

func TestCallReadOnlyNotOkay(t *testing.T) {
	contract, err := clarity.ParseContractID(testnetAddr + ".simple-token")
	require.NoError(t, err)
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"okay":false,"cause":"Unchecked(NoSuchPublicFunction)"}`))
	})
	_, err = c.CallReadOnly(context.Background(), contract, "get-nope", testnetAddr)
	assert.ErrorIs(t, err, ErrReadOnlyFailed)
	assert.ErrorContains(t, err, "NoSuchPublicFunction")
}

func TestCallReadOnlyBadResultHex(t *testing.T) {
	contract, err := clarity.ParseContractID(testnetAddr + ".simple-token")
	require.NoError(t, err)
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"okay":true,"result":"0x07"}`))
	})
	_, err = c.CallReadOnly(context.Background(), contract, "get-name", testnetAddr)
	assert.ErrorIs(t, err, clarity.ErrTruncated)
}

// ---------------------------------------------------------------------------
// Broadcast
// ---------------------------------------------------------------------------

func TestBroadcast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{0x80, 0x01}, body)
		_, _ = w.Write([]byte(`"0xabc123"`))
	})
	txid, err := c.Broadcast(context.Background(), []byte{0x80, 0x01})
	require.NoError(t, err)
	assert.Equal(t, "abc123", txid)
}

func TestBroadcastRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"transaction rejected","reason":"BadNonce","reason_data":{"expected":3,"actual":1},"txid":"ff"}`))
	})
	_, err := c.Broadcast(context.Background(), []byte{1})

	var rej *BroadcastError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "BadNonce", rej.Reason)
	assert.Equal(t, "ff", rej.TxID)
	assert.Contains(t, rej.Error(), "expected")
}

func TestBroadcastServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	_, err := c.Broadcast(context.Background(), []byte{1})
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
}

// ---------------------------------------------------------------------------
// Info / Ping
// ---------------------------------------------------------------------------

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/info", r.URL.Path)
		_, _ = w.Write([]byte(`{"peer_version":402653196,"network_id":2147483648,"server_version":"stacks-node 3.0","stacks_tip_height":150123,"burn_block_height":870000}`))
	})
	latency, height, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(150123), height)
	assert.GreaterOrEqual(t, latency.Nanoseconds(), int64(0))

	info, err := c.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stacks-node 3.0", info.ServerVersion)
}
