package stacks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// BroadcastError is a transaction the node refused to accept.
type BroadcastError struct {
	TxID   string
	Reason string
	Detail string
}

func (e *BroadcastError) Error() string {
	msg := "transaction rejected by node: " + e.Reason
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Broadcast submits a signed, serialized transaction and returns its txid
// as reported by the node.
func (c *Client) Broadcast(ctx context.Context, raw []byte) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/v2/transactions", "application/octet-stream", raw)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if rej := parseRejection(body); rej != nil {
				return "", rej
			}
		}
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	var txid string
	if err := json.Unmarshal(body, &txid); err != nil {
		txid = strings.Trim(strings.TrimSpace(string(body)), `"`)
	}
	if txid == "" {
		return "", errors.New("broadcast response carried no txid")
	}
	return strings.TrimPrefix(txid, "0x"), nil
}

func parseRejection(body []byte) *BroadcastError {
	var resp struct {
		Error      string          `json:"error"`
		Reason     string          `json:"reason"`
		ReasonData json.RawMessage `json:"reason_data"`
		TxID       string          `json:"txid"`
	}
	if json.Unmarshal(body, &resp) != nil || resp.Reason == "" {
		return nil
	}
	detail := ""
	if len(resp.ReasonData) > 0 && string(resp.ReasonData) != "null" {
		detail = string(resp.ReasonData)
	}
	return &BroadcastError{TxID: resp.TxID, Reason: resp.Reason, Detail: detail}
}
