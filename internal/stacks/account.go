package stacks

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// STXBalance returns the account's micro-STX balance as a decimal string.
func (c *Client) STXBalance(ctx context.Context, address string) (string, error) {
	var resp struct {
		STX struct {
			Balance string `json:"balance"`
		} `json:"stx"`
	}
	if err := c.getJSON(ctx, "/extended/v1/address/"+url.PathEscape(address)+"/balances", &resp); err != nil {
		return "", err
	}
	if resp.STX.Balance == "" {
		return "", fmt.Errorf("balance response for %s has no stx.balance", address)
	}
	return resp.STX.Balance, nil
}

// NextNonce returns the nonce the account's next transaction should use.
func (c *Client) NextNonce(ctx context.Context, address string) (uint64, error) {
	var resp struct {
		PossibleNextNonce *uint64 `json:"possible_next_nonce"`
	}
	if err := c.getJSON(ctx, "/extended/v1/address/"+url.PathEscape(address)+"/nonces", &resp); err != nil {
		return 0, err
	}
	if resp.PossibleNextNonce == nil {
		return 0, fmt.Errorf("nonce response for %s has no possible_next_nonce", address)
	}
	return *resp.PossibleNextNonce, nil
}

// ResolveName looks up a BNS name (e.g. "alice.btc") and returns the owning
// address.
func (c *Client) ResolveName(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(name, ".") {
		return "", fmt.Errorf("%q is not a BNS name (expected name.namespace)", name)
	}
	var resp struct {
		Address string `json:"address"`
	}
	if err := c.getJSON(ctx, "/v1/names/"+url.PathEscape(name), &resp); err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("no BNS record for %q", name)
		}
		return "", fmt.Errorf("resolving %q: %w", name, err)
	}
	if resp.Address == "" {
		return "", fmt.Errorf("no address record for %q", name)
	}
	return resp.Address, nil
}
