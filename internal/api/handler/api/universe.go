// internal/api/handler/api/universe.go
package api

import (
	"net/http"

	"github.com/newthinker/perfscope/internal/api/response"
	"github.com/newthinker/perfscope/internal/perf"
	"github.com/newthinker/perfscope/internal/universe"
)

// UniverseApp defines the interface needed from app.App.
type UniverseApp interface {
	Universe() *universe.Universe
	DefaultRiskFreeRate() float64
}

type tickerView struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

type regionView struct {
	Name      string       `json:"name"`
	Market    string       `json:"market"`
	Benchmark tickerView   `json:"benchmark"`
	Tickers   []tickerView `json:"tickers"`
}

// UniverseHandler lists the selectable regions and analysis defaults.
type UniverseHandler struct {
	app UniverseApp
}

// NewUniverseHandler creates a new universe handler.
func NewUniverseHandler(app UniverseApp) *UniverseHandler {
	return &UniverseHandler{app: app}
}

// List handles GET /api/v1/universe
func (h *UniverseHandler) List(w http.ResponseWriter, r *http.Request) {
	regions := h.app.Universe().Regions()

	views := make([]regionView, 0, len(regions))
	for _, reg := range regions {
		rv := regionView{
			Name:      reg.Name,
			Market:    string(reg.Market),
			Benchmark: tickerView{Symbol: reg.Benchmark.Symbol, Name: reg.Benchmark.Name},
			Tickers:   make([]tickerView, 0, len(reg.Tickers)),
		}
		for _, t := range reg.Tickers {
			rv.Tickers = append(rv.Tickers, tickerView{Symbol: t.Symbol, Name: t.Name})
		}
		views = append(views, rv)
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"regions":               views,
		"periods":               universe.Periods,
		"default_risk_free_pct": perf.Round(h.app.DefaultRiskFreeRate()*100, 2),
		"max_risk_free_pct":     universe.MaxRiskFreePercent,
	})
}
