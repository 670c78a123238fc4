package perf

import (
	"fmt"
	"math"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
)

// TradingDaysPerYear is the annualisation factor. It assumes one observation
// per trading day; weekly or monthly series are misstated by it.
const TradingDaysPerYear = 252

// Returns computes period-over-period simple returns. The first timestamp
// has no prior price and is dropped, so the result is one point shorter.
func Returns(prices series.Series) series.Series {
	if len(prices) < 2 {
		return series.Series{}
	}
	out := make(series.Series, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = core.Point{
			Time:  prices[i].Time,
			Value: prices[i].Value/prices[i-1].Value - 1,
		}
	}
	return out
}

// Cumulative compounds returns into a growth-of-one series.
func Cumulative(returns series.Series) series.Series {
	out := make(series.Series, len(returns))
	cumulative := 1.0
	for i, r := range returns {
		cumulative *= 1 + r.Value
		out[i] = core.Point{Time: r.Time, Value: cumulative}
	}
	return out
}

// Drawdowns measures each point's decline from the running peak of the
// cumulative series. Values are <= 0 and exactly 0 at a new high.
func Drawdowns(cumulative series.Series) series.Series {
	out := make(series.Series, len(cumulative))
	var peak float64
	for i, c := range cumulative {
		if i == 0 || c.Value > peak {
			peak = c.Value
		}
		out[i] = core.Point{Time: c.Time, Value: c.Value/peak - 1}
	}
	return out
}

// MaxDrawdown returns the most negative drawdown and its position.
// An empty series yields (0, -1).
func MaxDrawdown(drawdown series.Series) (float64, int) {
	worst, at := 0.0, -1
	for i, d := range drawdown {
		if at == -1 || d.Value < worst {
			worst, at = d.Value, i
		}
	}
	return worst, at
}

// DrawdownDurations counts, at every point, how many consecutive periods the
// series has been underwater. The counter resets to 0 whenever drawdown
// returns to 0.
func DrawdownDurations(drawdown series.Series) []int {
	out := make([]int, len(drawdown))
	run := 0
	for i, d := range drawdown {
		if d.Value < 0 {
			run++
		} else {
			run = 0
		}
		out[i] = run
	}
	return out
}

// MaxDrawdownDuration is the length of the longest underwater run. A run
// still open at the last observation counts up to that point.
func MaxDrawdownDuration(drawdown series.Series) int {
	return longestRun(DrawdownDurations(drawdown))
}

// longestRun is the largest value of an underwater counter.
func longestRun(durations []int) int {
	longest := 0
	for _, n := range durations {
		longest = max(longest, n)
	}
	return longest
}

// CAGR annualises the holding-period return using the number of return
// observations, not calendar time. A growth too large to annualise over so
// few returns overflows and is reported as ErrInsufficientData.
func CAGR(prices series.Series) (float64, error) {
	if len(prices) < 2 {
		return 0, core.ErrInsufficientData
	}
	periods := float64(len(prices) - 1)
	growth := prices.Last().Value / prices.First().Value
	cagr := math.Pow(growth, TradingDaysPerYear/periods) - 1
	if math.IsInf(cagr, 0) || math.IsNaN(cagr) {
		return 0, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("growth of %gx over %d returns cannot be annualised", growth, len(prices)-1))
	}
	return cagr, nil
}

// Volatility is the annualised sample standard deviation of returns.
// A single return has no observable dispersion and yields 0.
func Volatility(returns series.Series) float64 {
	n := len(returns)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r.Value
	}
	mean := sum / float64(n)

	var variance float64
	for _, r := range returns {
		variance += (r.Value - mean) * (r.Value - mean)
	}
	stdDev := math.Sqrt(variance / float64(n-1))

	return stdDev * math.Sqrt(TradingDaysPerYear)
}

// Sharpe computes excess return per unit of volatility. With zero volatility,
// or any input that leaves the ratio non-finite, it returns NaN and false.
func Sharpe(cagr, riskFreeRate, volatility float64) (float64, bool) {
	if volatility == 0 || math.IsNaN(volatility) {
		return math.NaN(), false
	}
	ratio := (cagr - riskFreeRate) / volatility
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return math.NaN(), false
	}
	return ratio, true
}
