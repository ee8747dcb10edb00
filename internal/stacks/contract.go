package stacks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

// ErrReadOnlyFailed is returned when the node reports okay:false for a
// read-only call.
var ErrReadOnlyFailed = errors.New("read-only call failed")

// CallReadOnly evaluates a read-only contract function as sender and returns
// the decoded result.
func (c *Client) CallReadOnly(ctx context.Context, contract clarity.ContractPrincipal, function, sender string, args ...clarity.Value) (clarity.Value, error) {
	hexArgs := make([]string, 0, len(args))
	for _, a := range args {
		h, err := clarity.SerializeHex(a)
		if err != nil {
			return nil, fmt.Errorf("encoding argument %s: %w", a, err)
		}
		hexArgs = append(hexArgs, h)
	}

	payload, err := json.Marshal(struct {
		Sender    string   `json:"sender"`
		Arguments []string `json:"arguments"`
	}{sender, hexArgs})
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/v2/contracts/call-read/%s/%s/%s",
		url.PathEscape(contract.Issuer.Address()),
		url.PathEscape(contract.Name),
		url.PathEscape(function))

	body, err := c.do(ctx, http.MethodPost, path, "application/json", payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Okay   bool   `json:"okay"`
		Result string `json:"result"`
		Cause  string `json:"cause"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", function, err)
	}
	if !resp.Okay {
		return nil, fmt.Errorf("%w: %s: %s", ErrReadOnlyFailed, function, resp.Cause)
	}

	v, err := clarity.DeserializeHex(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", function, err)
	}
	return v, nil
}
