package gateway

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/stxtoken/internal/clarity"
)

// TokenInfo is a snapshot of the token's metadata.
type TokenInfo struct {
	Name            string
	Symbol          string
	Decimals        uint8
	TotalSupply     *big.Int
	ContractAddress string
}

// TokenInfo reads name, symbol, decimals and total supply concurrently. If
// any read fails the others are canceled and no partial result is returned.
func (g *Gateway) TokenInfo(ctx context.Context, contractAddress string) (*TokenInfo, error) {
	c, err := parseContract(contractAddress)
	if err != nil {
		return nil, err
	}
	sender := c.Issuer.Address()

	var (
		name, symbol string
		decimals     *big.Int
		supply       *big.Int
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		v, err := g.call(ctx, c, fnGetName, sender)
		if err != nil {
			return err
		}
		name, err = clarity.AsString(v)
		return err
	})
	eg.Go(func() error {
		v, err := g.call(ctx, c, fnGetSymbol, sender)
		if err != nil {
			return err
		}
		symbol, err = clarity.AsString(v)
		return err
	})
	eg.Go(func() error {
		v, err := g.call(ctx, c, fnGetDecimals, sender)
		if err != nil {
			return err
		}
		decimals, err = clarity.AsUint(v)
		return err
	})
	eg.Go(func() error {
		v, err := g.call(ctx, c, fnGetTotalSupply, sender)
		if err != nil {
			return err
		}
		supply, err = clarity.AsUint(v)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, g.fail("token-info", ErrTokenInfoFetch, err)
	}

	if !decimals.IsUint64() || decimals.Uint64() > 255 {
		return nil, g.fail("token-info", ErrTokenInfoFetch, fmt.Errorf("decimals %s out of range", decimals))
	}

	return &TokenInfo{
		Name:            name,
		Symbol:          symbol,
		Decimals:        uint8(decimals.Uint64()),
		TotalSupply:     supply,
		ContractAddress: contractAddress,
	}, nil
}

// TokenBalance returns user's balance in the token's smallest unit.
func (g *Gateway) TokenBalance(ctx context.Context, contractAddress, user string) (*big.Int, error) {
	c, err := parseContract(contractAddress)
	if err != nil {
		return nil, err
	}
	p, err := clarity.ParseStandardPrincipal(user)
	if err != nil {
		return nil, g.fail("balance", ErrBalanceFetch, err)
	}
	v, err := g.call(ctx, c, fnGetBalance, user, p)
	if err != nil {
		return nil, g.fail("balance", ErrBalanceFetch, err)
	}
	bal, err := clarity.AsUint(v)
	if err != nil {
		return nil, g.fail("balance", ErrBalanceFetch, err)
	}
	return bal, nil
}

// ContractOwner returns the principal reported by get-contract-owner.
func (g *Gateway) ContractOwner(ctx context.Context, contractAddress string) (string, error) {
	c, err := parseContract(contractAddress)
	if err != nil {
		return "", err
	}
	v, err := g.call(ctx, c, fnGetContractOwner, c.Issuer.Address())
	if err != nil {
		return "", g.fail("owner", ErrContractOwnerFetch, err)
	}
	owner, err := clarity.AsPrincipal(v)
	if err != nil {
		return "", g.fail("owner", ErrContractOwnerFetch, err)
	}
	return owner, nil
}
