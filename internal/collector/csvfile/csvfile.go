// Package csvfile reads price tables exported to CSV, in either the flat
// single-header layout or the two-header (field row, ticker row) layout.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
)

var timeLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	time.DateTime,
}

// ReadTable parses a CSV price table.
func ReadTable(r io.Reader) (*series.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("reading csv: %w", err))
	}
	if len(records) < 2 {
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("csv has no data rows"))
	}

	var (
		cols []series.Column
		body [][]string
	)

	header := records[0]
	switch {
	case strings.EqualFold(header[0], "Date"):
		for _, f := range header[1:] {
			cols = append(cols, series.Column{Field: strings.TrimSpace(f)})
		}
		body = records[1:]
	case strings.EqualFold(records[1][0], "Ticker"):
		tickers := records[1]
		if len(tickers) != len(header) {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("ticker row has %d cells, field row has %d", len(tickers), len(header)))
		}
		for i := 1; i < len(header); i++ {
			cols = append(cols, series.Column{
				Field:      strings.TrimSpace(header[i]),
				Instrument: strings.TrimSpace(tickers[i]),
			})
		}
		body = records[2:]
		if len(body) > 0 && strings.EqualFold(body[0][0], "Date") {
			body = body[1:]
		}
	default:
		return nil, core.WrapError(core.ErrDataShape,
			fmt.Errorf("unrecognised header %q", strings.Join(header, ",")))
	}

	index := make([]time.Time, 0, len(body))
	cells := make([][]*float64, len(cols))
	for rowNum, row := range body {
		if len(row) != len(cols)+1 {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("row %d has %d cells, want %d", rowNum+1, len(row), len(cols)+1))
		}
		ts, err := parseTime(row[0])
		if err != nil {
			return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("row %d: %w", rowNum+1, err))
		}
		index = append(index, ts)
		for c := range cols {
			v, err := parseCell(row[c+1])
			if err != nil {
				return nil, core.WrapError(core.ErrDataShape,
					fmt.Errorf("row %d column %s: %w", rowNum+1, cols[c], err))
			}
			cells[c] = append(cells[c], v)
		}
	}

	table := series.NewTable(index)
	for c, col := range cols {
		if err := table.AddColumn(col, cells[c]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ReadFile parses a CSV price table from disk.
func ReadFile(path string) (*series.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func parseCell(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "na":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Collector serves history from <symbol>.csv files in a directory.
type Collector struct {
	dir string
}

// New creates a csv collector rooted at dir.
func New(dir string) *Collector {
	return &Collector{dir: dir}
}

func (c *Collector) Name() string {
	return "csvfile"
}

func (c *Collector) SupportedMarkets() []core.Market {
	return []core.Market{core.MarketUS, core.MarketHK, core.MarketCNA, core.MarketEU, core.MarketIN}
}

func (c *Collector) Init(cfg collector.Config) error {
	if cfg.Path != "" {
		c.dir = cfg.Path
	}
	if c.dir == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("csvfile collector needs a path"))
	}
	return nil
}

// FetchHistory loads <dir>/<symbol>.csv and returns bars within [start, end].
func (c *Collector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if strings.ContainsAny(symbol, `/\`) || symbol == "" || strings.Contains(symbol, "..") {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("invalid symbol %q", symbol))
	}

	table, err := ReadFile(filepath.Join(c.dir, symbol+".csv"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.WrapError(core.ErrSymbolNotFound, err)
		}
		return nil, err
	}

	layout, err := table.Layout()
	if err != nil {
		return nil, err
	}
	column := func(field string) []*float64 {
		col := series.Column{Field: field}
		if layout == series.LayoutHierarchical {
			col.Instrument = symbol
		}
		cells, _ := table.Column(col)
		return cells
	}

	closes := column(series.FieldClose)
	if closes == nil {
		return nil, core.WrapError(core.ErrDataShape, fmt.Errorf("%s.csv has no Close column for %s", symbol, symbol))
	}
	opens, highs, lows, vols := column(series.FieldOpen), column(series.FieldHigh), column(series.FieldLow), column(series.FieldVolume)

	var bars []core.OHLCV
	for i, ts := range table.Index() {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		cl := closes[i]
		if cl == nil || math.IsNaN(*cl) {
			continue
		}
		bars = append(bars, core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Open:     cellOr(opens, i, *cl),
			High:     cellOr(highs, i, *cl),
			Low:      cellOr(lows, i, *cl),
			Close:    *cl,
			Volume:   int64(cellOr(vols, i, 0)),
			Time:     ts,
		})
	}
	return bars, nil
}

func cellOr(cells []*float64, i int, fallback float64) float64 {
	if cells == nil || cells[i] == nil || math.IsNaN(*cells[i]) {
		return fallback
	}
	return *cells[i]
}
