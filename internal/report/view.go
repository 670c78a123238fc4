package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/newthinker/perfscope/internal/series"
)

// View is the JSON form of an analysis report.
type View struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Region         string          `json:"region,omitempty"`
	Benchmark      string          `json:"benchmark,omitempty"`
	BenchmarkName  string          `json:"benchmark_name,omitempty"`
	Period         string          `json:"period,omitempty"`
	Start          string          `json:"start"`
	End            string          `json:"end"`
	RiskFreeRate   float64         `json:"risk_free_rate_pct"`
	Observations   int             `json:"observations"`
	Metrics        MetricsView     `json:"metrics"`
	Comparison     *ComparisonView `json:"comparison,omitempty"`
	BenchmarkError string          `json:"benchmark_error,omitempty"`
	Drawdown       []PointView     `json:"drawdown,omitempty"`
	RollingVol     []PointView     `json:"rolling_volatility,omitempty"`
	Relative       []RelativeView  `json:"relative,omitempty"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// MetricsView carries the rounded metric bundle. Sharpe is null when the
// ratio is undefined.
type MetricsView struct {
	CAGR                float64  `json:"cagr_pct"`
	Volatility          float64  `json:"volatility_pct"`
	Sharpe              *float64 `json:"sharpe"`
	SharpeDefined       bool     `json:"sharpe_defined"`
	MaxDrawdown         float64  `json:"max_drawdown_pct"`
	MaxDrawdownDate     string   `json:"max_drawdown_date,omitempty"`
	MaxDrawdownDuration int      `json:"max_drawdown_duration_days"`
}

type ComparisonView struct {
	StockCAGR     float64 `json:"stock_cagr_pct"`
	BenchmarkCAGR float64 `json:"benchmark_cagr_pct"`
	ExcessReturn  float64 `json:"excess_return_pct"`
	Outperformed  bool    `json:"outperformed"`
}

type PointView struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// RelativeView is one row of the rebased stock-vs-benchmark series.
type RelativeView struct {
	Date      string   `json:"date"`
	Stock     *float64 `json:"stock"`
	Benchmark *float64 `json:"benchmark"`
}

// NewView converts a report. withSeries adds the drawdown curve, the
// rolling volatility (both percent) and the rebased relative-performance rows.
func NewView(r *app.Report, withSeries bool) View {
	v := View{
		ID:             r.ID,
		Symbol:         r.Symbol,
		Name:           r.Name,
		Region:         r.Region,
		Benchmark:      r.Benchmark,
		BenchmarkName:  r.BenchmarkName,
		Period:         r.Period,
		Start:          formatDate(r.Start),
		End:            formatDate(r.End),
		RiskFreeRate:   perf.Round(r.RiskFreeRate*100, 2),
		BenchmarkError: r.BenchmarkError,
		GeneratedAt:    r.GeneratedAt,
	}

	if res := r.Result; res != nil {
		v.Observations = res.Prices.Len()
		v.Metrics = newMetricsView(res)
		if withSeries {
			v.Drawdown = points(res.Drawdown)
			v.RollingVol = points(perf.RollingVolatility(res.Returns, perf.DefaultRollingWindow))
		}
	}

	if c := r.Comparison; c != nil {
		v.Comparison = &ComparisonView{
			StockCAGR:     c.StockCAGR,
			BenchmarkCAGR: c.BenchmarkCAGR,
			ExcessReturn:  c.ExcessReturn,
			Outperformed:  c.Outperformed(),
		}
		if withSeries {
			for _, row := range c.Rows() {
				v.Relative = append(v.Relative, RelativeView{
					Date:      formatDate(row.Time),
					Stock:     roundPtr(row.Stock),
					Benchmark: roundPtr(row.Benchmark),
				})
			}
		}
	}
	return v
}

func newMetricsView(res *perf.Result) MetricsView {
	m := res.Metrics
	mv := MetricsView{
		CAGR:                m.CAGR,
		Volatility:          m.Volatility,
		SharpeDefined:       m.SharpeDefined(),
		MaxDrawdown:         m.MaxDrawdown,
		MaxDrawdownDuration: m.MaxDrawdownDuration,
	}
	if s, err := m.SharpeRatio(); err == nil {
		mv.Sharpe = &s
	}
	if !res.Raw.MaxDrawdownAt.IsZero() {
		mv.MaxDrawdownDate = formatDate(res.Raw.MaxDrawdownAt)
	}
	return mv
}

// WriteJSON writes the indented view of r.
func WriteJSON(w io.Writer, r *app.Report, withSeries bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewView(r, withSeries))
}

func points(s series.Series) []PointView {
	out := make([]PointView, len(s))
	for i, p := range s {
		out[i] = PointView{Date: formatDate(p.Time), Value: perf.Round(p.Value*100, 2)}
	}
	return out
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := perf.Round(*v, 2)
	return &r
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
