package app

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Warm(t *testing.T) {
	history := map[string][]core.OHLCV{}
	m := &mockCollector{name: "yahoo", history: history}
	for _, sym := range []string{"^GSPC", "AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "^NSEI", "RELIANCE.NS", "TCS.NS", "INFY.NS", "HDFCBANK.NS", "ICICIBANK.NS"} {
		history[sym] = bars(sym, 1, 2)
	}
	a, rec := newTestApp(m)

	res, err := a.Warm(context.Background())
	require.NoError(t, err)

	assert.Len(t, m.calls, 12)
	assert.Equal(t, "^NSEI", m.calls[0], "regions are warmed in name order, benchmark first")
	assert.Equal(t, 12, res.Fetched)
	assert.Empty(t, res.Failed)
	assert.Len(t, rec.fetches, 12)
}

func TestApp_Warm_EmptyHistoryFails(t *testing.T) {
	history := map[string][]core.OHLCV{}
	m := &mockCollector{name: "yahoo", history: history}
	for _, sym := range []string{"^GSPC", "AAPL", "MSFT", "GOOGL", "AMZN", "^NSEI", "RELIANCE.NS", "TCS.NS", "INFY.NS", "HDFCBANK.NS"} {
		history[sym] = bars(sym, 1, 2)
	}
	a, rec := newTestApp(m)

	res, err := a.Warm(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, res.Fetched)
	assert.Equal(t, []string{"ICICIBANK.NS", "NVDA"}, res.Failed)
	assert.Contains(t, rec.fetches, "yahoo:no_data")
}

func TestApp_Warm_CollectsFailures(t *testing.T) {
	m := &mockCollector{name: "yahoo", err: core.ErrCollectorFailed}
	a, rec := newTestApp(m)

	res, err := a.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Fetched)
	assert.Len(t, res.Failed, 12)
	assert.Equal(t, "yahoo:collector_failed", rec.fetches[0])
}

func TestApp_Warm_Canceled(t *testing.T) {
	a, _ := newTestApp(&mockCollector{name: "yahoo"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Warm(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
