package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
)

var tableFields = []string{
	series.FieldOpen, series.FieldHigh, series.FieldLow, series.FieldClose, series.FieldVolume,
}

// BuildTable arranges bars into a price table. A single symbol yields a flat
// table; several symbols yield a hierarchical table over the union of their
// timestamps, with nil cells where a symbol has no bar.
func BuildTable(bars map[string][]core.OHLCV) (*series.Table, error) {
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no symbols"))
	}

	symbols := make([]string, 0, len(bars))
	seen := make(map[time.Time]struct{})
	for sym, bs := range bars {
		symbols = append(symbols, sym)
		for _, b := range bs {
			seen[b.Time] = struct{}{}
		}
	}
	sort.Strings(symbols)

	index := make([]time.Time, 0, len(seen))
	for ts := range seen {
		index = append(index, ts)
	}
	sort.Slice(index, func(i, j int) bool { return index[i].Before(index[j]) })

	pos := make(map[time.Time]int, len(index))
	for i, ts := range index {
		pos[ts] = i
	}

	flat := len(symbols) == 1
	table := series.NewTable(index)
	for _, sym := range symbols {
		cols := make(map[string][]*float64, len(tableFields))
		for _, f := range tableFields {
			cols[f] = make([]*float64, len(index))
		}
		for _, b := range bars[sym] {
			i := pos[b.Time]
			vals := map[string]float64{
				series.FieldOpen:   b.Open,
				series.FieldHigh:   b.High,
				series.FieldLow:    b.Low,
				series.FieldClose:  b.Close,
				series.FieldVolume: float64(b.Volume),
			}
			for f, v := range vals {
				v := v
				cols[f][i] = &v
			}
		}

		for _, f := range tableFields {
			col := series.Column{Field: f, Instrument: sym}
			if flat {
				col.Instrument = ""
			}
			if err := table.AddColumn(col, cols[f]); err != nil {
				return nil, err
			}
		}
	}

	return table, nil
}

// Download fetches history for each symbol and builds a price table.
func Download(ctx context.Context, c Collector, symbols []string, start, end time.Time, interval string) (*series.Table, error) {
	bars := make(map[string][]core.OHLCV, len(symbols))
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		data, err := c.FetchHistory(ctx, sym, start, end, interval)
		if err != nil {
			return nil, fmt.Errorf("fetching %s from %s: %w", sym, c.Name(), err)
		}
		if len(data) == 0 {
			return nil, core.WrapError(core.ErrNoData, fmt.Errorf("%s returned no bars for %s", c.Name(), sym))
		}
		bars[sym] = data
	}
	return BuildTable(bars)
}
