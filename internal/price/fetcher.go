// Package price looks up fiat prices of STX on CoinGecko.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// Fetcher retrieves token prices from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// NewFetcher creates a new price fetcher.
func NewFetcher(currency string) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
}

// Currency returns the lowercase fiat currency code.
func (f *Fetcher) Currency() string { return f.currency }

// coinGeckoIDs maps asset symbols to CoinGecko coin IDs.
var coinGeckoIDs = map[string]string{
	"stx": "blockstack",
	"btc": "bitcoin",
}

// GetPrice returns the fiat price of an asset by symbol ("stx", "btc").
func (f *Fetcher) GetPrice(ctx context.Context, symbol string) (float64, error) {
	id, ok := coinGeckoIDs[strings.ToLower(symbol)]
	if !ok {
		return 0, fmt.Errorf("unknown asset: %s", symbol)
	}
	prices, err := f.fetchBatch(ctx, []string{id})
	if err != nil {
		return 0, err
	}
	p, ok := prices[id]
	if !ok {
		return 0, fmt.Errorf("price not available for: %s", id)
	}
	return p, nil
}

// STXPrice is GetPrice for STX.
func (f *Fetcher) STXPrice(ctx context.Context) (float64, error) {
	return f.GetPrice(ctx, "stx")
}

// FiatValue converts a micro-STX balance at the given price into a two
// decimal fiat amount. Invalid input yields "0.00".
func FiatValue(microSTX string, price float64) string {
	micro, ok := new(big.Rat).SetString(strings.TrimSpace(microSTX))
	if !ok {
		return "0.00"
	}
	p := new(big.Rat)
	if _, ok := p.SetString(fmt.Sprintf("%.8f", price)); !ok {
		return "0.00"
	}
	v := new(big.Rat).Mul(micro, p)
	v.Quo(v, big.NewRat(1_000_000, 1))
	return v.FloatString(2)
}

func (f *Fetcher) fetchBatch(ctx context.Context, ids []string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		f.baseURL,
		strings.Join(ids, ","),
		f.currency,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading price response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned %d", resp.StatusCode)
	}

	// Response: {"blockstack":{"usd":1.23}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing price response: %w", err)
	}

	prices := make(map[string]float64)
	for id, currencies := range raw {
		if p, ok := currencies[f.currency]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}
