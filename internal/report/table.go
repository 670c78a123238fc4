package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/olekukonko/tablewriter"
)

// NotAvailable is shown in place of an undefined metric.
const NotAvailable = "N/A"

// Render prints the metrics table, the benchmark comparison and a drawdown
// summary for r.
func Render(w io.Writer, r *app.Report) error {
	if r == nil || r.Result == nil {
		return fmt.Errorf("empty report")
	}

	title := r.Symbol
	if r.Name != "" && r.Name != r.Symbol {
		title = fmt.Sprintf("%s (%s)", r.Name, r.Symbol)
	}
	fmt.Fprintf(w, "\n%s  %s to %s", title, formatDate(r.Start), formatDate(r.End))
	if r.Period != "" {
		fmt.Fprintf(w, "  [%s]", r.Period)
	}
	fmt.Fprintf(w, "\nRisk-free rate: %.2f%%  Observations: %d\n\n", r.RiskFreeRate*100, r.Result.Prices.Len())

	if err := renderMetrics(w, r.Result.Metrics); err != nil {
		return err
	}
	renderDrawdown(w, r.Result)

	switch {
	case r.Comparison != nil:
		return renderComparison(w, r)
	case r.BenchmarkError != "":
		fmt.Fprintf(w, "\nBenchmark %s unavailable: %s\n", r.Benchmark, r.BenchmarkError)
	}
	return nil
}

func renderMetrics(w io.Writer, b perf.Bundle) error {
	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	for _, e := range b.Entries() {
		if err := table.Append(e.Label, formatMetric(e)); err != nil {
			return err
		}
	}
	return table.Render()
}

func renderDrawdown(w io.Writer, res *perf.Result) {
	if res.Raw.MaxDrawdown == 0 {
		fmt.Fprintln(w, "\nNo drawdown: every close was a new high.")
		return
	}
	fmt.Fprintf(w, "\nDeepest drawdown %.2f%% reached on %s; longest underwater run %d days.\n",
		res.Metrics.MaxDrawdown, formatDate(res.Raw.MaxDrawdownAt), res.Metrics.MaxDrawdownDuration)
	if n := len(res.Durations); n > 0 && res.Durations[n-1] > 0 {
		fmt.Fprintf(w, "Still %.2f%% below the peak after %d days.\n",
			perf.Round(res.Drawdown[n-1].Value*100, 2), res.Durations[n-1])
	}
}

func renderComparison(w io.Writer, r *app.Report) error {
	c := r.Comparison
	bench := r.Benchmark
	if r.BenchmarkName != "" && r.BenchmarkName != r.Benchmark {
		bench = fmt.Sprintf("%s (%s)", r.BenchmarkName, r.Benchmark)
	}

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header("Instrument", "CAGR (%)")
	if err := table.Append(r.Symbol, formatFloat(c.StockCAGR)); err != nil {
		return err
	}
	if err := table.Append(bench, formatFloat(c.BenchmarkCAGR)); err != nil {
		return err
	}
	if err := table.Append("Excess Return", formatFloat(c.ExcessReturn)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	verdict := "underperformed"
	if c.Outperformed() {
		verdict = "outperformed"
	}
	fmt.Fprintf(w, "%s %s %s by %.2f percentage points.\n", r.Symbol, verdict, r.Benchmark, math.Abs(c.ExcessReturn))
	return nil
}

func formatMetric(e perf.Entry) string {
	if math.IsNaN(e.Value) {
		return NotAvailable
	}
	if e.Label == perf.LabelMaxDDDuration {
		return strconv.Itoa(int(e.Value))
	}
	return formatFloat(e.Value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
