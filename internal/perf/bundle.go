package perf

import (
	"math"

	"github.com/newthinker/perfscope/internal/core"
)

// Display labels for the metrics bundle.
const (
	LabelCAGR          = "CAGR (%)"
	LabelVolatility    = "Volatility (%)"
	LabelSharpe        = "Sharpe Ratio"
	LabelMaxDrawdown   = "Max Drawdown (%)"
	LabelMaxDDDuration = "Max DD Duration (days)"
)

// Bundle is the presentation-ready set of statistics. Percentage fields are
// in percent and rounded to 2 decimals.
type Bundle struct {
	CAGR                float64
	Volatility          float64
	Sharpe              float64 // NaN when undefined
	MaxDrawdown         float64
	MaxDrawdownDuration int
}

// Entry is one labelled metric.
type Entry struct {
	Label string
	Value float64
}

// NewBundle rounds raw statistics for display.
func NewBundle(raw Raw) Bundle {
	sharpe := math.NaN()
	if raw.SharpeDefined {
		sharpe = Round(raw.Sharpe, 2)
	}
	return Bundle{
		CAGR:                Round(raw.CAGR*100, 2),
		Volatility:          Round(raw.Volatility*100, 2),
		Sharpe:              sharpe,
		MaxDrawdown:         Round(raw.MaxDrawdown*100, 2),
		MaxDrawdownDuration: raw.MaxDrawdownDuration,
	}
}

// SharpeDefined reports whether the Sharpe ratio has a value.
func (b Bundle) SharpeDefined() bool {
	return !math.IsNaN(b.Sharpe)
}

// SharpeRatio returns the Sharpe ratio, or ErrUndefinedRatio when volatility
// was zero.
func (b Bundle) SharpeRatio() (float64, error) {
	if !b.SharpeDefined() {
		return 0, core.ErrUndefinedRatio
	}
	return b.Sharpe, nil
}

// Entries lists the metrics in display order.
func (b Bundle) Entries() []Entry {
	return []Entry{
		{LabelCAGR, b.CAGR},
		{LabelVolatility, b.Volatility},
		{LabelSharpe, b.Sharpe},
		{LabelMaxDrawdown, b.MaxDrawdown},
		{LabelMaxDDDuration, float64(b.MaxDrawdownDuration)},
	}
}

// Map returns the metrics keyed by display label.
func (b Bundle) Map() map[string]float64 {
	entries := b.Entries()
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		out[e.Label] = e.Value
	}
	return out
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
