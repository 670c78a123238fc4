package perf

import (
	"math"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
)

// DefaultRollingWindow is roughly one trading month.
const DefaultRollingWindow = 21

// RollingVolatility returns the annualized sample volatility over each
// trailing window of returns, stamped with the window's last timestamp.
// The result has len(returns)-window+1 points, or none when there are fewer
// returns than window or window < 2.
func RollingVolatility(returns series.Series, window int) series.Series {
	if window < 2 || len(returns) < window {
		return series.Series{}
	}

	out := make(series.Series, 0, len(returns)-window+1)
	w := float64(window)
	annualize := math.Sqrt(TradingDaysPerYear)

	var sum, sumSq float64
	for i := 0; i < window; i++ {
		sum += returns[i].Value
		sumSq += returns[i].Value * returns[i].Value
	}

	for i := window - 1; ; i++ {
		variance := (sumSq - sum*sum/w) / (w - 1)
		if variance < 0 {
			variance = 0 // rounding on flat windows
		}
		out = append(out, core.Point{Time: returns[i].Time, Value: math.Sqrt(variance) * annualize})

		if i+1 == len(returns) {
			break
		}
		drop, add := returns[i+1-window].Value, returns[i+1].Value
		sum += add - drop
		sumSq += add*add - drop*drop
	}
	return out
}
