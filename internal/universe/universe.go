// Package universe lists the markets, tickers and benchmark indices the
// analyzer offers, and the look-back periods it understands.
package universe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/perfscope/internal/core"
)

// Ticker is a selectable instrument.
type Ticker struct {
	Symbol string `json:"symbol" mapstructure:"symbol"`
	Name   string `json:"name" mapstructure:"name"`
}

// Region groups tickers that share a benchmark index.
type Region struct {
	Name      string      `json:"name" mapstructure:"name"`
	Market    core.Market `json:"market" mapstructure:"market"`
	Benchmark Ticker      `json:"benchmark" mapstructure:"benchmark"`
	Tickers   []Ticker    `json:"tickers" mapstructure:"tickers"`
}

// NameOf returns the display name for symbol, or the symbol itself.
func (r Region) NameOf(symbol string) string {
	if strings.EqualFold(symbol, r.Benchmark.Symbol) {
		return r.Benchmark.Name
	}
	for _, t := range r.Tickers {
		if strings.EqualFold(t.Symbol, symbol) {
			return t.Name
		}
	}
	return symbol
}

// Has reports whether symbol is one of the region's tickers.
func (r Region) Has(symbol string) bool {
	for _, t := range r.Tickers {
		if strings.EqualFold(t.Symbol, symbol) {
			return true
		}
	}
	return false
}

// Universe is a set of regions keyed by name.
type Universe struct {
	regions map[string]Region
}

// New builds a universe from regions. Names are matched case-insensitively.
func New(regions ...Region) *Universe {
	u := &Universe{regions: make(map[string]Region, len(regions))}
	for _, r := range regions {
		u.regions[strings.ToLower(r.Name)] = r
	}
	return u
}

// Default returns the built-in India and US regions.
func Default() *Universe {
	return New(
		Region{
			Name:      "India",
			Market:    core.MarketIN,
			Benchmark: Ticker{Symbol: "^NSEI", Name: "NIFTY 50"},
			Tickers: []Ticker{
				{Symbol: "RELIANCE.NS", Name: "Reliance Industries"},
				{Symbol: "TCS.NS", Name: "Tata Consultancy Services"},
				{Symbol: "INFY.NS", Name: "Infosys"},
				{Symbol: "HDFCBANK.NS", Name: "HDFC Bank"},
				{Symbol: "ICICIBANK.NS", Name: "ICICI Bank"},
			},
		},
		Region{
			Name:      "US",
			Market:    core.MarketUS,
			Benchmark: Ticker{Symbol: "^GSPC", Name: "S&P 500"},
			Tickers: []Ticker{
				{Symbol: "AAPL", Name: "Apple"},
				{Symbol: "MSFT", Name: "Microsoft"},
				{Symbol: "GOOGL", Name: "Alphabet"},
				{Symbol: "AMZN", Name: "Amazon"},
				{Symbol: "NVDA", Name: "NVIDIA"},
			},
		},
	)
}

// Lookup finds a region by name.
func (u *Universe) Lookup(name string) (Region, error) {
	r, ok := u.regions[strings.ToLower(name)]
	if !ok {
		return Region{}, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("unknown region %q", name))
	}
	return r, nil
}

// Regions returns all regions sorted by name.
func (u *Universe) Regions() []Region {
	out := make([]Region, 0, len(u.regions))
	for _, r := range u.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegionOf finds the region listing symbol as a ticker.
func (u *Universe) RegionOf(symbol string) (Region, bool) {
	for _, r := range u.Regions() {
		if r.Has(symbol) {
			return r, true
		}
	}
	return Region{}, false
}
