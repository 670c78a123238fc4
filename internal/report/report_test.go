package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/benchmark"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/newthinker/perfscope/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func prices(t *testing.T, values ...float64) series.Series {
	t.Helper()
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = day0.AddDate(0, 0, i)
	}
	s, err := series.New(times, values)
	require.NoError(t, err)
	return s
}

func testReport(t *testing.T, closes []float64, bench []float64) *app.Report {
	t.Helper()
	res, err := perf.Compute(prices(t, closes...), 0.06)
	require.NoError(t, err)

	r := &app.Report{
		ID:            "test-id",
		Symbol:        "AAPL",
		Name:          "Apple",
		Region:        "US",
		Benchmark:     "^GSPC",
		BenchmarkName: "S&P 500",
		Period:        "1y",
		Start:         day0,
		End:           day0.AddDate(0, 0, len(closes)-1),
		RiskFreeRate:  0.06,
		Result:        res,
		GeneratedAt:   day0,
	}
	if bench != nil {
		r.Comparison, err = benchmark.Compare(res, prices(t, bench...))
		require.NoError(t, err)
	}
	return r
}

func TestNewView(t *testing.T) {
	r := testReport(t, []float64{100, 110, 105, 95, 100, 120}, []float64{4000, 4040, 4020, 3990, 4050, 4100})

	v := NewView(r, false)
	assert.Equal(t, "AAPL", v.Symbol)
	assert.Equal(t, "2024-01-02", v.Start)
	assert.Equal(t, 6.0, v.RiskFreeRate)
	assert.Equal(t, 6, v.Observations)
	assert.Equal(t, -13.64, v.Metrics.MaxDrawdown)
	assert.Equal(t, "2024-01-05", v.Metrics.MaxDrawdownDate)
	assert.Equal(t, 3, v.Metrics.MaxDrawdownDuration)
	require.NotNil(t, v.Metrics.Sharpe)
	assert.True(t, v.Metrics.SharpeDefined)
	require.NotNil(t, v.Comparison)
	assert.Equal(t, r.Comparison.ExcessReturn, v.Comparison.ExcessReturn)
	assert.Nil(t, v.Drawdown)
	assert.Nil(t, v.Relative)

	v = NewView(r, true)
	assert.Len(t, v.Drawdown, 5)
	assert.Equal(t, -13.64, v.Drawdown[2].Value)
	assert.Empty(t, v.RollingVol)
	assert.Len(t, v.Relative, 6)
	assert.Equal(t, 100.0, *v.Relative[0].Stock)
}

func TestWriteJSON_UndefinedSharpe(t *testing.T) {
	r := testReport(t, []float64{50, 50, 50}, nil)
	r.BenchmarkError = "no data"

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r, false))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	metrics := decoded["metrics"].(map[string]any)
	assert.Contains(t, metrics, "sharpe")
	assert.Nil(t, metrics["sharpe"])
	assert.Equal(t, false, metrics["sharpe_defined"])
	assert.NotContains(t, decoded, "comparison")
	assert.Equal(t, "no data", decoded["benchmark_error"])
}

func TestRender(t *testing.T) {
	r := testReport(t, []float64{100, 110, 105, 95, 100, 120}, []float64{4000, 4040, 4020, 3990, 4050, 4100})

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "Apple (AAPL)")
	assert.Contains(t, out, perf.LabelCAGR)
	assert.Contains(t, out, "-13.64")
	assert.Contains(t, out, "2024-01-05")
	assert.Contains(t, out, "Excess Return")
	assert.Contains(t, out, "S&P 500 (^GSPC)")
	assert.NotContains(t, out, NotAvailable)
}

func TestRender_UndefinedSharpeAndMissingBenchmark(t *testing.T) {
	r := testReport(t, []float64{50, 50, 50}, nil)
	r.BenchmarkError = core.ErrNoData.Error()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))

	out := buf.String()
	assert.Contains(t, out, NotAvailable)
	assert.Contains(t, out, "No drawdown")
	assert.Contains(t, out, "Benchmark ^GSPC unavailable")
}

func TestRender_OpenDrawdown(t *testing.T) {
	r := testReport(t, []float64{100, 120, 90, 95}, nil)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))
	assert.Contains(t, buf.String(), "Still -20.83% below the peak after 2 days.")
}

func TestRender_EmptyReport(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, &app.Report{}))
}
