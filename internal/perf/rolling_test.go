package perf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingVolatility(t *testing.T) {
	returns := Returns(makeSeries(t, 100, 110, 105, 95, 100, 120, 118))
	require.Equal(t, 6, returns.Len())

	rolling := RollingVolatility(returns, 3)
	require.Equal(t, 4, rolling.Len())

	for i, p := range rolling {
		window := returns[i : i+3]
		assert.Equal(t, window[2].Time, p.Time)
		assert.InDelta(t, Volatility(window), p.Value, 1e-9)
	}
}

func TestRollingVolatility_FlatWindow(t *testing.T) {
	returns := Returns(makeSeries(t, 10, 10, 10, 10))

	rolling := RollingVolatility(returns, 2)
	require.Equal(t, 2, rolling.Len())
	for _, p := range rolling {
		assert.Equal(t, 0.0, p.Value)
	}
}

func TestRollingVolatility_ShortInput(t *testing.T) {
	returns := Returns(makeSeries(t, 100, 110, 105))

	assert.Empty(t, RollingVolatility(returns, 5))
	assert.Empty(t, RollingVolatility(returns, 1))
	assert.Len(t, RollingVolatility(returns, 2), 1)
}
