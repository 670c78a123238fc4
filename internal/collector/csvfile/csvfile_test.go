package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/perfscope/internal/collector"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatCSV = `Date,Open,High,Low,Close,Volume
2024-01-02,187.1,188.4,183.9,185.6,82488700
2024-01-03,184.2,185.9,183.4,184.3,58414500
2024-01-04,182.2,183.1,180.9,,71983600
2024-01-05,181.9,182.8,180.2,181.2,62303300
`

const multiCSV = `Price,Close,Close,Volume,Volume
Ticker,AAPL,^GSPC,AAPL,^GSPC
Date,,,,
2024-01-02,185.6,4742.8,82488700,3743050000
2024-01-03,184.3,4704.8,58414500,3950760000
2024-01-04,181.9,,71983600,
`

func TestCollector_ImplementsCollector(t *testing.T) {
	var _ collector.Collector = (*Collector)(nil)
}

func TestReadTable_Flat(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(flatCSV))
	require.NoError(t, err)

	layout, err := tbl.Layout()
	require.NoError(t, err)
	assert.Equal(t, series.LayoutFlat, layout)
	assert.Equal(t, 4, tbl.Len())

	s, err := series.ExtractClose(tbl, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []float64{185.6, 184.3, 181.2}, s.Values())
}

func TestReadTable_Hierarchical(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader(multiCSV))
	require.NoError(t, err)

	layout, err := tbl.Layout()
	require.NoError(t, err)
	assert.Equal(t, series.LayoutHierarchical, layout)
	assert.Equal(t, []string{"AAPL", "^GSPC"}, tbl.Instruments())

	s, err := series.ExtractClose(tbl, "^GSPC")
	require.NoError(t, err)
	assert.Equal(t, []float64{4742.8, 4704.8}, s.Values())

	_, err = series.ExtractClose(tbl, "MSFT")
	assert.ErrorIs(t, err, core.ErrDataShape)
}

func TestReadTable_BadInput(t *testing.T) {
	tests := map[string]string{
		"no rows":      "Date,Close\n",
		"bad header":   "When,Close\n2024-01-02,1\n",
		"bad date":     "Date,Close\nyesterday,1\n",
		"bad number":   "Date,Close\n2024-01-02,abc\n",
		"short row":    "Date,Open,Close\n2024-01-02,1\n",
		"ticker width": "Price,Close,Close\nTicker,AAPL\n2024-01-02,1,2\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(in))
			assert.ErrorIs(t, err, core.ErrDataShape)
		})
	}
}

func TestCollector_FetchHistory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL.csv"), []byte(flatCSV), 0644))

	c := New("")
	require.NoError(t, c.Init(collector.Config{Path: dir}))

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	bars, err := c.FetchHistory(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 184.3, bars[0].Close)
	assert.Equal(t, 184.2, bars[0].Open)
	assert.Equal(t, int64(62303300), bars[1].Volume)
}

func TestCollector_FetchHistory_Hierarchical(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "^GSPC.csv"), []byte(multiCSV), 0644))

	c := New(dir)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars, err := c.FetchHistory(context.Background(), "^GSPC", start, start.AddDate(0, 1, 0), "1d")
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 4742.8, bars[0].Close)
	// no Open column: falls back to close
	assert.Equal(t, 4742.8, bars[0].Open)
}

func TestCollector_FetchHistory_Missing(t *testing.T) {
	c := New(t.TempDir())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchHistory(context.Background(), "NOPE", start, start.AddDate(0, 1, 0), "1d")
	assert.ErrorIs(t, err, core.ErrSymbolNotFound)

	_, err = c.FetchHistory(context.Background(), "../secret", start, start.AddDate(0, 1, 0), "1d")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestCollector_Init_NoPath(t *testing.T) {
	err := New("").Init(collector.Config{})
	assert.ErrorIs(t, err, core.ErrConfigMissing)
}
