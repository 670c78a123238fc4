package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

// family returns the gathered metric family called name, or nil.
func family(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string)
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func testMux(status int) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/analysis", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
	return mux
}

func TestHTTPMiddleware_LabelsByRoute(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		status     int
		wantPath   string
		wantStatus string
	}{
		{"analysis", "/api/v1/analysis?symbol=AAPL", http.StatusOK, "/api/v1/analysis", "2xx"},
		{"analysis error", "/api/v1/analysis?symbol=NONE", http.StatusNotFound, "/api/v1/analysis", "4xx"},
		{"collector down", "/api/v1/analysis?symbol=AAPL", http.StatusBadGateway, "/api/v1/analysis", "5xx"},
		{"unknown path", "/api/v1/RELIANCE.NS", http.StatusOK, "unmatched", "4xx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			wrapped := HTTPMiddleware(reg)(testMux(tt.status))

			wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			mf := family(t, reg, "http_requests_total")
			if mf == nil || len(mf.GetMetric()) != 1 {
				t.Fatalf("expected one http_requests_total series, got %v", mf)
			}
			got := labels(mf.GetMetric()[0])
			if got["path"] != tt.wantPath || got["status"] != tt.wantStatus || got["method"] != "GET" {
				t.Errorf("unexpected labels %v", got)
			}
			if family(t, reg, "http_request_duration_seconds") == nil {
				t.Error("expected http_request_duration_seconds to be recorded")
			}
		})
	}
}

func TestHTTPMiddleware_TracksInFlight(t *testing.T) {
	reg := NewRegistry()

	inFlight := func() float64 {
		mf := family(t, reg, "http_requests_in_flight")
		if mf == nil {
			return -1
		}
		return mf.GetMetric()[0].GetGauge().GetValue()
	}

	var during float64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = inFlight()
	})
	HTTPMiddleware(reg)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	if during != 1 {
		t.Errorf("expected in-flight to be 1 during request, got %v", during)
	}
	if after := inFlight(); after != 0 {
		t.Errorf("expected in-flight to be 0 after request, got %v", after)
	}
}
