package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYahoo_ImplementsCollector(t *testing.T) {
	var _ collector.Collector = (*Yahoo)(nil)
}

func TestYahoo_Name(t *testing.T) {
	y := New()
	if y.Name() != "yahoo" {
		t.Errorf("expected 'yahoo', got '%s'", y.Name())
	}
}

func TestYahoo_ToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"600519.SH", "600519.SS"}, // Shanghai -> SS for Yahoo
		{"RELIANCE.NS", "RELIANCE.NS"},
		{"^GSPC", "^GSPC"},
	}

	y := New()
	for _, tc := range tests {
		got := y.toYahooSymbol(tc.input)
		if got != tc.expected {
			t.Errorf("toYahooSymbol(%s) = %s, want %s", tc.input, got, tc.expected)
		}
	}
}

func TestValidateSymbol(t *testing.T) {
	for _, ok := range []string{"AAPL", "^GSPC", "HDFCBANK.NS", "BRK-B", "0700.HK"} {
		assert.NoError(t, validateSymbol(ok), ok)
	}
	for _, bad := range []string{"", "AA PL", "../etc", "A.B.C", strings.Repeat("X", 21)} {
		assert.Error(t, validateSymbol(bad), bad)
	}
}

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD"},
"timestamp":[1704205800,1704292200,1704378600],
"indicators":{"quote":[{"open":[187.1,null,182.0],"high":[188.4,null,183.1],"low":[183.9,null,180.9],
"close":[185.6,null,181.9],"volume":[82488700,null,71983600]}]}}],"error":null}}`

func newTestYahoo(t *testing.T, handler http.HandlerFunc) *Yahoo {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	y := New()
	require.NoError(t, y.Init(collector.Config{BaseURL: srv.URL, RequestsPerSecond: 100, Burst: 10}))
	return y
}

func TestYahoo_FetchHistory(t *testing.T) {
	var gotPath, gotInterval string
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(chartJSON))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := y.FetchHistory(context.Background(), "AAPL", start, start.AddDate(0, 0, 5), "1d")
	require.NoError(t, err)

	assert.Equal(t, "/AAPL", gotPath)
	assert.Equal(t, "1d", gotInterval)

	require.Len(t, bars, 2, "bar with null close should be skipped")
	assert.Equal(t, 185.6, bars[0].Close)
	assert.Equal(t, int64(82488700), bars[0].Volume)
	assert.Equal(t, 181.9, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

func TestYahoo_FetchHistory_YahooError(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := y.FetchHistory(context.Background(), "ZZZZ", start, start.AddDate(0, 1, 0), "1d")
	assert.ErrorIs(t, err, core.ErrSymbolNotFound)
}

func TestYahoo_FetchHistory_BadStatus(t *testing.T) {
	y := newTestYahoo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := y.FetchHistory(context.Background(), "AAPL", start, start.AddDate(0, 1, 0), "1d")
	assert.ErrorIs(t, err, core.ErrCollectorFailed)
}

func TestYahoo_FetchHistory_InvalidInput(t *testing.T) {
	y := New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := y.FetchHistory(context.Background(), "bad symbol", start, start.AddDate(0, 1, 0), "1d")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = y.FetchHistory(context.Background(), "AAPL", start, start, "1d")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
