// Package perf derives return and risk statistics from a closing-price
// series. Everything here is pure: inputs are never modified and every call
// returns a fresh result.
package perf

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
)

// Raw holds the unrounded statistics as fractions (0.12 = 12%).
type Raw struct {
	CAGR                float64
	Volatility          float64
	Sharpe              float64 // NaN when SharpeDefined is false
	SharpeDefined       bool
	MaxDrawdown         float64
	MaxDrawdownAt       time.Time // trough of the deepest drawdown
	MaxDrawdownDuration int
}

// Result is the outcome of one Compute call.
type Result struct {
	Prices    series.Series
	Returns   series.Series
	Drawdown  series.Series
	Durations []int // underwater counter aligned with Drawdown
	Raw       Raw
	Metrics   Bundle
}

// Compute runs the full metrics pipeline over prices. The risk-free rate is
// an annual fraction (0.06 = 6%).
func Compute(prices series.Series, riskFreeRate float64) (*Result, error) {
	if len(prices) < 2 {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("need at least 2 prices, got %d", len(prices)))
	}
	if math.IsNaN(riskFreeRate) || math.IsInf(riskFreeRate, 0) {
		return nil, core.WrapError(core.ErrInvalidParameter,
			fmt.Errorf("risk-free rate must be finite, got %v", riskFreeRate))
	}

	returns := Returns(prices)

	cagr, err := CAGR(prices)
	if err != nil {
		return nil, err
	}
	vol := Volatility(returns)
	sharpe, defined := Sharpe(cagr, riskFreeRate, vol)

	drawdown := Drawdowns(Cumulative(returns))
	maxDD, at := MaxDrawdown(drawdown)
	durations := DrawdownDurations(drawdown)

	raw := Raw{
		CAGR:                cagr,
		Volatility:          vol,
		Sharpe:              sharpe,
		SharpeDefined:       defined,
		MaxDrawdown:         maxDD,
		MaxDrawdownAt:       drawdown[at].Time,
		MaxDrawdownDuration: longestRun(durations),
	}

	pricesCopy := make(series.Series, len(prices))
	copy(pricesCopy, prices)

	return &Result{
		Prices:    pricesCopy,
		Returns:   returns,
		Drawdown:  drawdown,
		Durations: durations,
		Raw:       raw,
		Metrics:   NewBundle(raw),
	}, nil
}
