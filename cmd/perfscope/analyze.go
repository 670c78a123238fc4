package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/collector/csvfile"
	"github.com/newthinker/perfscope/internal/config"
	"github.com/newthinker/perfscope/internal/report"
	"github.com/newthinker/perfscope/internal/series"
	"github.com/newthinker/perfscope/internal/universe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeRegion    string
	analyzePeriod    string
	analyzeRF        float64
	analyzeBenchmark string
	analyzeFile      string
	analyzeEnd       string
	analyzeJSON      bool
	analyzeSeries    bool
	analyzeChartDir  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Compute performance and risk metrics for a symbol",
	Long: `Fetch price history for a symbol (or read it from a CSV file) and print
CAGR, volatility, Sharpe ratio, maximum drawdown and its duration, together
with a comparison against the region's benchmark index.`,
	Example: `  perfscope analyze AAPL
  perfscope analyze TCS.NS --region India --period 3y --rf 7
  perfscope analyze AAPL --file prices.csv --benchmark ^GSPC --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRegion, "region", "", "region (defaults to config)")
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "look-back period: "+strings.Join(universe.Periods, ", "))
	analyzeCmd.Flags().Float64Var(&analyzeRF, "rf", 0, "risk-free rate in percent (defaults to config)")
	analyzeCmd.Flags().StringVar(&analyzeBenchmark, "benchmark", "", "benchmark symbol (defaults to the region index)")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read prices from a CSV file instead of fetching")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "end date YYYY-MM-DD (defaults to today)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print JSON instead of tables")
	analyzeCmd.Flags().BoolVar(&analyzeSeries, "series", false, "include drawdown and relative series in JSON output")
	analyzeCmd.Flags().StringVar(&analyzeChartDir, "chart", "", "write price, drawdown and relative PNG charts to this directory")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log, err := newLogger(true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	rf := cfg.Analysis.RiskFreeRate
	if cmd.Flags().Changed("rf") {
		if rf, err = universe.RiskFreeFromPercent(analyzeRF); err != nil {
			return err
		}
	}

	symbol := strings.TrimSpace(args[0])

	var rep *app.Report
	if analyzeFile != "" {
		rep, err = analyzeFromFile(cfg, log, symbol, rf)
	} else {
		rep, err = analyzeFromSource(cmd.Context(), cfg, log, symbol, rf)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeChartDir != "" {
		paths, err := writeCharts(analyzeChartDir, rep, log)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.Debug("chart written", zap.String("path", p))
		}
	}

	if analyzeJSON {
		return report.WriteJSON(out, rep, analyzeSeries)
	}
	return report.Render(out, rep)
}

func analyzeFromSource(ctx context.Context, cfg *config.Config, log *zap.Logger, symbol string, rf float64) (*app.Report, error) {
	req := app.Request{
		Symbol:       symbol,
		Region:       analyzeRegion,
		Benchmark:    analyzeBenchmark,
		Period:       analyzePeriod,
		RiskFreeRate: rf,
	}
	if analyzeEnd != "" {
		end, err := time.Parse(time.DateOnly, analyzeEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid end date (expected YYYY-MM-DD): %w", err)
		}
		req.End = end
	}

	a, err := buildApp(cfg, log, nil)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	return a.Analyze(ctx, req)
}

func analyzeFromFile(cfg *config.Config, log *zap.Logger, symbol string, rf float64) (*app.Report, error) {
	table, err := csvfile.ReadFile(analyzeFile)
	if err != nil {
		return nil, err
	}

	a := app.New(cfg, log)
	return a.AnalyzeTable(table, symbol, fileBenchmark(a, table, symbol), rf)
}

// fileBenchmark picks the benchmark column for a CSV analysis: the flag when
// given, else the region index if the table carries it.
func fileBenchmark(a *app.App, table *series.Table, symbol string) string {
	if analyzeBenchmark != "" {
		return analyzeBenchmark
	}

	region, ok := a.Universe().RegionOf(symbol)
	if analyzeRegion != "" {
		r, err := a.Universe().Lookup(analyzeRegion)
		region, ok = r, err == nil
	}
	if !ok {
		return ""
	}
	if slices.Contains(table.Instruments(), region.Benchmark.Symbol) {
		return region.Benchmark.Symbol
	}
	return ""
}

// writeCharts renders every chart kind for rep into dir as <symbol>_<kind>.png.
// The relative chart is skipped when the benchmark comparison is missing, and
// any chart with fewer than two points is skipped with a warning.
func writeCharts(dir string, rep *app.Report, log *zap.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating chart dir: %w", err)
	}

	var paths []string
	for _, kind := range report.ChartKinds {
		if kind == report.ChartRelative && rep.Comparison == nil {
			continue
		}
		img, err := report.Chart(rep, kind)
		if errors.Is(err, report.ErrTooFewPoints) {
			log.Warn("chart skipped", zap.String("chart", string(kind)), zap.Error(err))
			continue
		}
		if err != nil {
			return paths, fmt.Errorf("rendering %s chart: %w", kind, err)
		}

		name := strings.NewReplacer("^", "", "/", "_").Replace(rep.Symbol) + "_" + string(kind) + ".png"
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, img, 0644); err != nil {
			return paths, fmt.Errorf("writing chart: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
