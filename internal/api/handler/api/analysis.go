// internal/api/handler/api/analysis.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/perfscope/internal/api/response"
	"github.com/newthinker/perfscope/internal/app"
	"github.com/newthinker/perfscope/internal/core"
	"github.com/newthinker/perfscope/internal/report"
	"github.com/newthinker/perfscope/internal/universe"
)

// AnalysisApp defines the interface needed from app.App.
type AnalysisApp interface {
	Analyze(ctx context.Context, req app.Request) (*app.Report, error)
	DefaultRiskFreeRate() float64
}

// AnalysisHandler handles analysis API requests.
type AnalysisHandler struct {
	app AnalysisApp
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(app AnalysisApp) *AnalysisHandler {
	return &AnalysisHandler{app: app}
}

// Get handles GET /api/v1/analysis?symbol=&region=&period=&rf=&benchmark=&end=&series=
//
// rf is a percentage (6 = 6%) and defaults to the configured rate.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, withSeries, err := h.parse(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	rep, err := h.app.Analyze(r.Context(), req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusOK, report.NewView(rep, withSeries))
}

// Chart handles GET /api/v1/analysis/chart?symbol=&kind=price|drawdown|relative
// with the same parameters as Get, answering with a PNG image.
func (h *AnalysisHandler) Chart(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseChartKind(firstNonEmpty(r.URL.Query().Get("kind"), string(report.ChartDrawdown)))
	if err != nil {
		response.Fail(w, core.WrapError(core.ErrInvalidParameter, err))
		return
	}

	req, _, err := h.parse(r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	rep, err := h.app.Analyze(r.Context(), req)
	if err != nil {
		response.Fail(w, err)
		return
	}

	if kind == report.ChartRelative && rep.Comparison == nil {
		response.Fail(w, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("benchmark unavailable: %s", rep.BenchmarkError)))
		return
	}

	img, err := report.Chart(rep, kind)
	if err != nil {
		response.Fail(w, core.WrapError(core.ErrInsufficientData, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (h *AnalysisHandler) parse(r *http.Request) (app.Request, bool, error) {
	q := r.URL.Query()

	req := app.Request{
		Symbol:       strings.TrimSpace(q.Get("symbol")),
		Region:       q.Get("region"),
		Benchmark:    strings.TrimSpace(q.Get("benchmark")),
		Period:       q.Get("period"),
		RiskFreeRate: h.app.DefaultRiskFreeRate(),
	}
	if req.Symbol == "" {
		return req, false, invalid("symbol is required")
	}

	if s := q.Get("rf"); s != "" {
		pct, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return req, false, invalid("rf must be a number, got %q", s)
		}
		if req.RiskFreeRate, err = universe.RiskFreeFromPercent(pct); err != nil {
			return req, false, err
		}
	}

	if s := q.Get("end"); s != "" {
		end, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return req, false, invalid("end must be YYYY-MM-DD, got %q", s)
		}
		req.End = end
	}

	var withSeries bool
	if s := q.Get("series"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return req, false, invalid("series must be a boolean, got %q", s)
		}
		withSeries = v
	}
	return req, withSeries, nil
}

func invalid(format string, args ...any) error {
	return core.WrapError(core.ErrInvalidParameter, fmt.Errorf(format, args...))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
