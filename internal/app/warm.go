package app

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/universe"
	"go.uber.org/zap"
)

// WarmResult summarises a prefetch run.
type WarmResult struct {
	Fetched int
	Failed  []string
}

// Warm fetches history for every benchmark and ticker in the universe over
// the default period. With a caching collector this fills the history cache
// for the day, so analyses of listed symbols are served locally.
func (a *App) Warm(ctx context.Context) (*WarmResult, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	period, err := universe.ParsePeriod(firstNonEmpty(a.cfg.Analysis.Period, "1y"))
	if err != nil {
		return nil, err
	}
	interval := firstNonEmpty(a.cfg.Analysis.Interval, "1d")
	end := a.now()
	start := period.Start(end)

	res := &WarmResult{}
	seen := make(map[string]struct{})
	for _, region := range a.universe.Regions() {
		symbols := []string{region.Benchmark.Symbol}
		for _, t := range region.Tickers {
			symbols = append(symbols, t.Symbol)
		}

		for _, sym := range symbols {
			if _, ok := seen[sym]; ok || sym == "" {
				continue
			}
			seen[sym] = struct{}{}
			if err := ctx.Err(); err != nil {
				return res, err
			}

			began := time.Now()
			data, err := src.FetchHistory(ctx, sym, start, end, interval)
			if err == nil && len(data) == 0 {
				err = core.WrapError(core.ErrNoData, fmt.Errorf("%s returned no bars for %s", src.Name(), sym))
			}
			status := "ok"
			if err != nil {
				status = errorStatus(err)
			}
			a.recorder.RecordFetch(src.Name(), status, time.Since(began).Seconds())

			if err != nil {
				a.logger.Warn("prefetch failed", zap.String("symbol", sym), zap.Error(err))
				res.Failed = append(res.Failed, sym)
				continue
			}
			res.Fetched++
		}
	}

	a.logger.Info("history prefetch complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("failed", len(res.Failed)),
		zap.String("period", period.Label),
	)
	return res, nil
}
