// Package benchmark compares an instrument's performance with an index.
package benchmark

import (
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/newthinker/perfscope/internal/series"
)

// RebaseLevel is the starting value of normalised performance series.
const RebaseLevel = 100

// Comparison holds instrument-vs-benchmark figures. CAGR fields are in
// percent, rounded to 2 decimals.
type Comparison struct {
	StockCAGR     float64
	BenchmarkCAGR float64
	ExcessReturn  float64

	Stock     series.Series // rebased to RebaseLevel
	Benchmark series.Series // rebased to RebaseLevel
}

// Row is one timestamp of the joined relative-performance table. A side is
// nil when it has no observation at that time.
type Row struct {
	Time      time.Time
	Stock     *float64
	Benchmark *float64
}

// Compare computes the benchmark's CAGR with the same convention as the
// instrument and rebases both series for a side-by-side view.
func Compare(stock *perf.Result, bench series.Series) (*Comparison, error) {
	if stock == nil {
		return nil, core.WrapError(core.ErrInsufficientData, fmt.Errorf("no instrument result"))
	}

	benchCAGR, err := perf.CAGR(bench)
	if err != nil {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("benchmark needs at least 2 prices, got %d", bench.Len()))
	}

	stockRebased, err := series.Rebase(stock.Prices, RebaseLevel)
	if err != nil {
		return nil, fmt.Errorf("rebasing instrument: %w", err)
	}
	benchRebased, err := series.Rebase(bench, RebaseLevel)
	if err != nil {
		return nil, fmt.Errorf("rebasing benchmark: %w", err)
	}

	return &Comparison{
		StockCAGR:     stock.Metrics.CAGR,
		BenchmarkCAGR: perf.Round(benchCAGR*100, 2),
		ExcessReturn:  perf.Round(stock.Raw.CAGR*100-benchCAGR*100, 2),
		Stock:         stockRebased,
		Benchmark:     benchRebased,
	}, nil
}

// Outperformed reports whether the instrument beat the benchmark.
func (c *Comparison) Outperformed() bool {
	return c.ExcessReturn > 0
}

// Rows outer-joins the rebased series on timestamp, in chronological order.
func (c *Comparison) Rows() []Row {
	byTime := make(map[time.Time]*Row, len(c.Stock)+len(c.Benchmark))
	get := func(t time.Time) *Row {
		r, ok := byTime[t]
		if !ok {
			r = &Row{Time: t}
			byTime[t] = r
		}
		return r
	}

	for _, p := range c.Stock {
		v := p.Value
		get(p.Time).Stock = &v
	}
	for _, p := range c.Benchmark {
		v := p.Value
		get(p.Time).Benchmark = &v
	}

	rows := make([]Row, 0, len(byTime))
	for _, r := range byTime {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Time.Before(rows[j].Time) })
	return rows
}
