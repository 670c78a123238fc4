package collector

import (
	"context"
	"time"

	"github.com/newthinker/perfscope/internal/core"
)

// Config holds collector configuration
type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Path              string // csvfile: directory holding <symbol>.csv files
	Extra             map[string]any
}

// Collector defines the interface for historical price providers
type Collector interface {
	// Metadata
	Name() string
	SupportedMarkets() []core.Market

	// Lifecycle
	Init(cfg Config) error

	// Data fetching
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error)
}
