package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/perfscope/internal/benchmark"
	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/config"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/newthinker/perfscope/internal/series"
	"github.com/newthinker/perfscope/internal/universe"
	"go.uber.org/zap"
)

// Recorder receives analysis and fetch events for metrics.
type Recorder interface {
	RecordAnalysis(status string, duration float64, sharpeDefined bool)
	RecordFetch(source, status string, duration float64)
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(string, float64, bool) {}
func (nopRecorder) RecordFetch(string, string, float64)  {}

// Request describes one analysis. Empty Region, Period and Benchmark fall
// back to the configured defaults; RiskFreeRate is always explicit.
type Request struct {
	Symbol       string
	Region       string
	Benchmark    string
	Period       string
	RiskFreeRate float64 // annual fraction
	End          time.Time
}

// Report is the outcome of an analysis.
type Report struct {
	ID            string
	Symbol        string
	Name          string
	Region        string
	Benchmark     string
	BenchmarkName string
	Period        string
	Start         time.Time
	End           time.Time
	RiskFreeRate  float64
	Result        *perf.Result
	// Comparison is nil when the benchmark could not be analysed;
	// BenchmarkError then says why.
	Comparison     *benchmark.Comparison
	BenchmarkError string
	GeneratedAt    time.Time
}

// App wires data retrieval to the metrics engine
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	universe   *universe.Universe
	recorder   Recorder
	now        func() time.Time
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		collectors: collector.NewRegistry(),
		universe:   cfg.Universe(),
		recorder:   nopRecorder{},
		now:        time.Now,
	}
}

// RegisterCollector adds a collector to the app
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// SetRecorder sets the metrics recorder
func (a *App) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	a.recorder = r
}

// Universe returns the regions the app offers
func (a *App) Universe() *universe.Universe {
	return a.universe
}

// DefaultRiskFreeRate returns the configured risk-free rate
func (a *App) DefaultRiskFreeRate() float64 {
	return a.cfg.Analysis.RiskFreeRate
}

func (a *App) source() (collector.Collector, error) {
	name := a.cfg.Collector.Source
	if name == "" {
		name = "yahoo"
	}
	c, ok := a.collectors.Get(name)
	if !ok {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("collector %q not registered", name))
	}
	return c, nil
}

// Analyze fetches history for the instrument and its benchmark and computes
// the metrics.
func (a *App) Analyze(ctx context.Context, req Request) (report *Report, err error) {
	started := a.now()
	defer func() {
		status, sharpeDefined := "ok", false
		if err != nil {
			status = errorStatus(err)
		} else {
			sharpeDefined = report.Result.Raw.SharpeDefined
		}
		a.recorder.RecordAnalysis(status, time.Since(started).Seconds(), sharpeDefined)
	}()

	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		return nil, core.WrapError(core.ErrInvalidParameter, fmt.Errorf("symbol is required"))
	}

	regionName := firstNonEmpty(req.Region, a.cfg.Analysis.Region)
	region, err := a.universe.Lookup(regionName)
	if err != nil {
		return nil, err
	}

	period, err := universe.ParsePeriod(firstNonEmpty(req.Period, a.cfg.Analysis.Period))
	if err != nil {
		return nil, err
	}

	end := req.End
	if end.IsZero() {
		end = a.now()
	}
	start := period.Start(end)

	src, err := a.source()
	if err != nil {
		return nil, err
	}

	log := a.logger.With(
		zap.String("symbol", symbol),
		zap.String("region", region.Name),
		zap.String("period", period.Label),
	)
	log.Info("starting analysis", zap.Float64("risk_free_rate", req.RiskFreeRate))

	prices, err := a.fetchCloses(ctx, src, symbol, start, end)
	if err != nil {
		log.Warn("fetching instrument history failed", zap.Error(err))
		return nil, err
	}

	result, err := perf.Compute(prices, req.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("computing metrics for %s: %w", symbol, err)
	}

	benchSymbol := firstNonEmpty(req.Benchmark, region.Benchmark.Symbol)
	report = &Report{
		ID:            uuid.NewString(),
		Symbol:        symbol,
		Name:          region.NameOf(symbol),
		Region:        region.Name,
		Benchmark:     benchSymbol,
		BenchmarkName: region.NameOf(benchSymbol),
		Period:        period.Label,
		Start:         start,
		End:           end,
		RiskFreeRate:  req.RiskFreeRate,
		Result:        result,
		GeneratedAt:   a.now().UTC(),
	}

	benchPrices, err := a.fetchCloses(ctx, src, benchSymbol, start, end)
	if err == nil {
		report.Comparison, err = benchmark.Compare(result, benchPrices)
	}
	if err != nil {
		log.Warn("benchmark comparison unavailable", zap.String("benchmark", benchSymbol), zap.Error(err))
		report.BenchmarkError = err.Error()
	}

	log.Info("analysis complete",
		zap.String("id", report.ID),
		zap.Int("prices", result.Prices.Len()),
		zap.Float64("cagr_pct", result.Metrics.CAGR),
		zap.Bool("sharpe_defined", result.Raw.SharpeDefined),
	)
	return report, nil
}

// AnalyzeTable analyses a pre-loaded price table. When the table is
// hierarchical and also carries benchSymbol, the benchmark comparison is
// included.
func (a *App) AnalyzeTable(table *series.Table, symbol, benchSymbol string, riskFreeRate float64) (*Report, error) {
	prices, err := series.ExtractClose(table, symbol)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", symbol, err)
	}

	result, err := perf.Compute(prices, riskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("computing metrics for %s: %w", symbol, err)
	}

	report := &Report{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Name:         symbol,
		Start:        prices.First().Time,
		End:          prices.Last().Time,
		RiskFreeRate: riskFreeRate,
		Result:       result,
		GeneratedAt:  a.now().UTC(),
	}
	if r, ok := a.universe.RegionOf(symbol); ok {
		report.Region = r.Name
		report.Name = r.NameOf(symbol)
	}

	if benchSymbol == "" {
		return report, nil
	}
	report.Benchmark = benchSymbol
	report.BenchmarkName = benchSymbol

	if layout, _ := table.Layout(); layout != series.LayoutHierarchical {
		report.BenchmarkError = "table holds a single instrument"
		return report, nil
	}
	benchPrices, err := series.ExtractClose(table, benchSymbol)
	if err == nil {
		report.Comparison, err = benchmark.Compare(result, benchPrices)
	}
	if err != nil {
		a.logger.Warn("benchmark comparison unavailable", zap.String("benchmark", benchSymbol), zap.Error(err))
		report.BenchmarkError = err.Error()
	}
	return report, nil
}

func (a *App) fetchCloses(ctx context.Context, c collector.Collector, symbol string, start, end time.Time) (series.Series, error) {
	began := time.Now()
	table, err := collector.Download(ctx, c, []string{symbol}, start, end, firstNonEmpty(a.cfg.Analysis.Interval, "1d"))
	status := "ok"
	if err != nil {
		status = errorStatus(err)
	}
	a.recorder.RecordFetch(c.Name(), status, time.Since(began).Seconds())
	if err != nil {
		return nil, err
	}
	return series.ExtractClose(table, symbol)
}

func errorStatus(err error) string {
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return strings.ToLower(coreErr.Code)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
