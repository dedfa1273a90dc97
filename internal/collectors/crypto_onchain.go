package collectors

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/augur/internal/models"
)

const (
	// DefaultYieldPoolsURL is the DefiLlama yield pools endpoint
	DefaultYieldPoolsURL = "https://yields.llama.fi/pools"

	minPoolTVL = 100_000_000
)

// YieldPool is one DefiLlama pool
type YieldPool struct {
	Project    string  `json:"project"`
	Symbol     string  `json:"symbol"`
	TVLUSD     float64 `json:"tvlUsd"`
	APY        float64 `json:"apy"`
	Stablecoin bool    `json:"stablecoin"`
}

// TopStablePools returns the n highest-APY stablecoin pools above the TVL floor
func TopStablePools(pools []YieldPool, n int) []YieldPool {
	var eligible []YieldPool
	for _, p := range pools {
		if p.TVLUSD > minPoolTVL && p.Stablecoin {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].APY > eligible[j].APY
	})
	if len(eligible) > n {
		eligible = eligible[:n]
	}
	return eligible
}

// CryptoOnchainCollector records the best low-risk stablecoin yields
type CryptoOnchainCollector struct {
	base
	endpoint string
}

func NewCryptoOnchainCollector(deps *Deps) *CryptoOnchainCollector {
	return &CryptoOnchainCollector{
		base:     base{name: "crypto_onchain", category: models.CategoryAssets, deps: deps},
		endpoint: DefaultYieldPoolsURL,
	}
}

func (c *CryptoOnchainCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()

	var resp struct {
		Data []YieldPool `json:"data"`
	}
	if err := c.deps.Fetcher.GetJSON(ctx, c.name, c.endpoint, nil, &resp); err != nil {
		return report.Finish(), err
	}

	lines := []string{"[Major Stablecoin Yields (Low Risk)]"}
	for _, p := range TopStablePools(resp.Data, 5) {
		lines = append(lines, fmt.Sprintf("- %s (%s): APY %.2f%% (TVL: $%.0fM)", p.Project, p.Symbol, p.APY, p.TVLUSD/1_000_000))
		report.Saved(p.Project + "/" + p.Symbol)
	}

	if _, err := c.deps.Writer.WriteText(c.category, "crypto_yields.txt", strings.Join(lines, "\n")+"\n"); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}
