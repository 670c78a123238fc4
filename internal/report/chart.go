package report

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/series"
	"github.com/vicanso/go-charts/v2"
)

// ChartKind names a chart of an analysis.
type ChartKind string

const (
	ChartPrice    ChartKind = "price"
	ChartDrawdown ChartKind = "drawdown"
	ChartRelative ChartKind = "relative"
)

// ErrTooFewPoints is returned when a chart would have fewer than two points.
var ErrTooFewPoints = errors.New("not enough data points")

// ChartKinds lists the charts in display order.
var ChartKinds = []ChartKind{ChartPrice, ChartDrawdown, ChartRelative}

// ParseChartKind validates a chart name.
func ParseChartKind(s string) (ChartKind, error) {
	for _, k := range ChartKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// Chart renders one chart of r as PNG.
func Chart(r *app.Report, kind ChartKind) ([]byte, error) {
	if r == nil || r.Result == nil {
		return nil, fmt.Errorf("empty report")
	}
	switch kind {
	case ChartPrice:
		return PriceChart(r)
	case ChartDrawdown:
		return DrawdownChart(r)
	case ChartRelative:
		return RelativeChart(r)
	default:
		return nil, fmt.Errorf("unknown chart %q", kind)
	}
}

// PriceChart plots the closing prices.
func PriceChart(r *app.Report) ([]byte, error) {
	prices := r.Result.Prices
	return lineChart(
		[][]float64{prices.Values()},
		labels(prices.Times()),
		nil,
		fmt.Sprintf("%s closing price", r.Symbol),
		fmt.Sprintf("%s to %s", formatDate(r.Start), formatDate(r.End)),
	)
}

// DrawdownChart plots the drawdown from peak in percent, with the deepest
// point named in the subtitle.
func DrawdownChart(r *app.Report) ([]byte, error) {
	dd := r.Result.Drawdown
	values := make([]float64, len(dd))
	for i, p := range dd {
		values[i] = p.Value * 100
	}
	sub := "no drawdown"
	if at := r.Result.Raw.MaxDrawdownAt; r.Result.Raw.MaxDrawdown < 0 && !at.IsZero() {
		sub = fmt.Sprintf("Max DD %.2f%% on %s", r.Result.Metrics.MaxDrawdown, formatDate(at))
	}
	return lineChart([][]float64{values}, labels(dd.Times()), nil, "Drawdown from peak (%)", sub)
}

// RelativeChart plots instrument and benchmark rebased to 100. Gaps where
// one side has no observation carry its previous value forward.
func RelativeChart(r *app.Report) ([]byte, error) {
	c := r.Comparison
	if c == nil {
		return nil, fmt.Errorf("no benchmark comparison for %s", r.Symbol)
	}

	rows := c.Rows()
	times := make([]time.Time, len(rows))
	stock := make([]float64, len(rows))
	bench := make([]float64, len(rows))
	lastStock, lastBench := firstValue(c.Stock), firstValue(c.Benchmark)
	for i, row := range rows {
		times[i] = row.Time
		if row.Stock != nil {
			lastStock = *row.Stock
		}
		if row.Benchmark != nil {
			lastBench = *row.Benchmark
		}
		stock[i], bench[i] = lastStock, lastBench
	}

	return lineChart(
		[][]float64{stock, bench},
		labels(times),
		[]string{r.Symbol, r.Benchmark},
		"Relative performance (normalized to 100)",
		fmt.Sprintf("excess return %.2f%%", c.ExcessReturn),
	)
}

func lineChart(values [][]float64, xLabels, names []string, title, subtitle string) ([]byte, error) {
	if len(xLabels) < 2 {
		return nil, ErrTooFewPoints
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, vs := range values {
		for _, v := range vs {
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	pad := (yMax - yMin) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(yMax)*0.01, 1)
	}
	yMin -= pad
	yMax += pad

	split := len(xLabels) - 1
	if split > 8 {
		split = 8
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		if i < len(names) {
			seriesList[i].Name = names[i]
		}
	}

	opts := []charts.OptionFunc{
		charts.TitleTextOptionFunc(title, subtitle),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xLabels, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	}
	if len(names) > 0 {
		opts = append(opts, charts.LegendOptionFunc(charts.LegendOption{Data: names}))
	}

	painter, err := charts.Render(charts.ChartOption{SeriesList: seriesList}, opts...)
	if err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return painter.Bytes()
}

func labels(times []time.Time) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = t.Format(time.DateOnly)
	}
	return out
}

func firstValue(s series.Series) float64 {
	if len(s) == 0 {
		return 0
	}
	return s[0].Value
}
