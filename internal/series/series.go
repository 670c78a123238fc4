// Package series holds time-indexed price data: the raw price table as
// delivered by a collector and the flat closing-price series the metrics
// engine consumes.
package series

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/perfscope/internal/core"
)

// Series is an ordered sequence of timestamped values, strictly increasing
// in time.
type Series []core.Point

// New builds a series from parallel time and value slices.
func New(times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return nil, core.WrapError(core.ErrDataShape,
			fmt.Errorf("index has %d entries, values have %d", len(times), len(values)))
	}
	s := make(Series, len(times))
	for i := range times {
		if i > 0 && !times[i].After(times[i-1]) {
			return nil, core.WrapError(core.ErrDataShape,
				fmt.Errorf("index not strictly increasing at %s", times[i].Format(time.DateOnly)))
		}
		s[i] = core.Point{Time: times[i], Value: values[i]}
	}
	return s, nil
}

// Len returns the number of points.
func (s Series) Len() int { return len(s) }

// First returns the earliest point. It panics on an empty series.
func (s Series) First() core.Point { return s[0] }

// Last returns the latest point. It panics on an empty series.
func (s Series) Last() core.Point { return s[len(s)-1] }

// Values returns a copy of the values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Times returns a copy of the timestamps in order.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// Rebase scales the series so that its first value equals base.
// An empty series is returned unchanged.
func Rebase(s Series, base float64) (Series, error) {
	if len(s) == 0 {
		return Series{}, nil
	}
	first := s[0].Value
	if first == 0 || math.IsNaN(first) || math.IsInf(first, 0) {
		return nil, core.WrapError(core.ErrDataShape,
			fmt.Errorf("cannot rebase from %v", first))
	}
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = core.Point{Time: p.Time, Value: p.Value / first * base}
	}
	return out, nil
}
