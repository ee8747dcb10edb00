package stacks

import (
	"context"
	"time"
)

// NodeInfo is the subset of /v2/info the tool reports.
type NodeInfo struct {
	PeerVersion     uint64 `json:"peer_version"`
	NetworkID       uint64 `json:"network_id"`
	ServerVersion   string `json:"server_version"`
	StacksTipHeight uint64 `json:"stacks_tip_height"`
	BurnBlockHeight uint64 `json:"burn_block_height"`
}

// Info returns the node's view of the chain tip.
func (c *Client) Info(ctx context.Context) (*NodeInfo, error) {
	var info NodeInfo
	if err := c.getJSON(ctx, "/v2/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Ping fetches node info and returns the latency and Stacks tip height.
func (c *Client) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	info, err := c.Info(ctx)
	latency := time.Since(start)
	if err != nil {
		return latency, 0, err
	}
	return latency, info.StacksTipHeight, nil
}
