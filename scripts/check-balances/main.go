// check-balances: queries the STX and token balance of a set of addresses on
// every Stacks network in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances [ADDR.contract-name]
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/stxtoken/internal/c32"
	"github.com/Mohsinsiddi/stxtoken/internal/config"
	"github.com/Mohsinsiddi/stxtoken/internal/gateway"
	"github.com/Mohsinsiddi/stxtoken/internal/network"
	"github.com/Mohsinsiddi/stxtoken/internal/stacks"
	"github.com/Mohsinsiddi/stxtoken/internal/units"
)

// ── config ────────────────────────────────────────────────────────────────────

// Testnet addresses; the mainnet form of each is derived from its hash.
var wallets = []string{
	"ST2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKQYAC0RQ",
	"ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM",
	"STC5KHM41H6WHAST7MWWDD807YSPRQKJ68T330BQ",
}

const apiTimeout = 12 * time.Second

// ── types ─────────────────────────────────────────────────────────────────────

type result struct {
	network string
	wallet  string // short form
	stx     string
	token   string
	err     string
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	contract := config.DefaultContract
	if len(os.Args) > 1 {
		contract = os.Args[1]
	}

	reg := network.NewRegistry()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, n := range reg.All() {
		if n.Name == "devnet" {
			continue // needs a local node
		}

		for _, wallet := range wallets {
			wg.Add(1)
			go func(n network.Network, wallet string) {
				defer wg.Done()

				ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
				defer cancel()

				addr, err := onNetwork(wallet, n.IsMainnet())
				r := result{network: n.Name, wallet: shortAddr(addr), stx: "—", token: "—"}
				if err != nil {
					r.err = shortErr(err)
					mu.Lock()
					results = append(results, r)
					mu.Unlock()
					return
				}

				client := stacks.NewClient(n.APIURL)

				// Quick ping first, skip networks that don't respond.
				if _, _, pingErr := client.Ping(ctx); pingErr != nil {
					r.err = "unreachable"
				} else {
					if stx, err := stxBalance(ctx, client, addr); err != nil {
						r.err = shortErr(err)
					} else {
						r.stx = trimZeros(stx)
					}
					// The token contract only exists on the network it was
					// deployed to.
					if strings.HasPrefix(contract, "SP") == n.IsMainnet() {
						r.token = tokenBalance(ctx, client, contract, addr)
					}
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(n, wallet)
		}
	}

	wg.Wait()

	printTable(results)
}

func onNetwork(addr string, mainnet bool) (string, error) {
	if mainnet {
		return c32.ConvertVersion(addr, c32.VersionMainnetSingleSig)
	}
	return c32.ConvertVersion(addr, c32.VersionTestnetSingleSig)
}

func stxBalance(ctx context.Context, client *stacks.Client, addr string) (string, error) {
	micro, err := client.STXBalance(ctx, addr)
	if err != nil {
		return "", err
	}
	return units.FormatMicroSTX(micro)
}

func tokenBalance(ctx context.Context, client *stacks.Client, contract, addr string) string {
	gw := gateway.New(client, nil)
	info, err := gw.TokenInfo(ctx, contract)
	if err != nil {
		return "error"
	}
	raw, err := gw.TokenBalance(ctx, contract, addr)
	if err != nil {
		return "error"
	}
	return trimZeros(units.FormatUnits(raw, int(info.Decimals))) + " " + info.Symbol
}

// ── output ────────────────────────────────────────────────────────────────────

func printTable(results []result) {
	// Sort by network (mainnet first) → wallet.
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.wallet < b.wallet
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "NETWORK\tWALLET\tSTX\tTOKEN\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 8)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 16)+"\t"+
		strings.Repeat("-", 20)+"\t"+
		strings.Repeat("-", 12))

	last := ""
	for _, r := range results {
		if r.network != last {
			if last != "" {
				fmt.Fprintln(w, "\t\t\t\t") // blank separator between networks
			}
			last = r.network
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.network, r.wallet, r.stx, r.token, r.err)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func shortAddr(addr string) string {
	return units.FormatAddress(addr, 5)
}

func shortErr(err error) string {
	return units.TruncateText(err.Error(), 30)
}

// trimZeros removes trailing zeros after decimal: "0.050000" → "0.05"
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
