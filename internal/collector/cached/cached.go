// Package cached decorates a collector with a blob-store cache of the raw
// history it returns.
package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/storage/archive"
	"go.uber.org/zap"
)

// Prefix is the archive prefix under which history is cached.
const Prefix = "history"

// Recorder receives cache hit/miss events.
type Recorder interface {
	RecordCache(source, result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCache(string, string) {}

// Collector serves history from the archive when present and fills it from
// the wrapped collector otherwise.
type Collector struct {
	next     collector.Collector
	store    archive.Storage
	logger   *zap.Logger
	recorder Recorder
}

// New wraps next with a cache in store.
func New(next collector.Collector, store archive.Storage, logger *zap.Logger, rec Recorder) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Collector{next: next, store: store, logger: logger, recorder: rec}
}

func (c *Collector) Name() string { return c.next.Name() }

func (c *Collector) SupportedMarkets() []core.Market { return c.next.SupportedMarkets() }

func (c *Collector) Init(cfg collector.Config) error { return c.next.Init(cfg) }

// Key returns the archive path for a history request. Bounds are truncated
// to the day, so repeated requests within a day share an entry.
func Key(source, symbol string, start, end time.Time, interval string) string {
	return fmt.Sprintf("%s/%s/%s/%s_%s_%s.json", Prefix, source, symbol,
		start.UTC().Format("20060102"), end.UTC().Format("20060102"), interval)
}

func (c *Collector) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	key := Key(c.next.Name(), symbol, start, end, interval)

	data, err := c.store.Read(ctx, key)
	switch {
	case err == nil:
		var bars []core.OHLCV
		jerr := json.Unmarshal(data, &bars)
		if jerr == nil {
			c.recorder.RecordCache(c.next.Name(), "hit")
			c.logger.Debug("history cache hit", zap.String("key", key), zap.Int("bars", len(bars)))
			return bars, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(jerr))
	case !errors.Is(err, archive.ErrNotFound):
		c.logger.Warn("history cache read failed", zap.String("key", key), zap.Error(err))
	}

	c.recorder.RecordCache(c.next.Name(), "miss")
	bars, err := c.next.FetchHistory(ctx, symbol, start, end, interval)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return bars, nil
	}

	encoded, err := json.Marshal(bars)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	if err := c.store.Write(ctx, key, encoded); err != nil {
		c.logger.Warn("history cache write failed", zap.String("key", key), zap.Error(err))
	}
	return bars, nil
}
