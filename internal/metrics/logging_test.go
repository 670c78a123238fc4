package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// captureLogger returns a JSON logger writing into buf.
func captureLogger(buf *bytes.Buffer) *zap.Logger {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(buf), zapcore.InfoLevel))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		status    int
		remote    string
		forwarded string
		requestID string
		wantIP    string
	}{
		{"analysis ok", "/api/v1/analysis", http.StatusOK, "192.168.1.1:12345", "", "", "192.168.1.1:12345"},
		{"chart rejected", "/api/v1/analysis/chart", http.StatusUnprocessableEntity, "10.0.0.1:54321", "", "", "10.0.0.1:54321"},
		{"behind proxy", "/api/v1/universe", http.StatusOK, "10.0.0.1:54321", "203.0.113.50, 10.0.0.2", "", "203.0.113.50"},
		{"caller request id", "/api/health", http.StatusOK, "10.0.0.1:54321", "", "req-42", "10.0.0.1:54321"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			wrapped := LoggingMiddleware(captureLogger(&buf))(handler)

			req := httptest.NewRequest("GET", tt.path, nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.requestID != "" {
				req.Header.Set("X-Request-ID", tt.requestID)
			}
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to parse log: %v, log: %s", err, buf.String())
			}

			if entry["msg"] != "http request" || entry["method"] != "GET" || entry["path"] != tt.path {
				t.Errorf("unexpected entry %v", entry)
			}
			if entry["status"].(float64) != float64(tt.status) {
				t.Errorf("expected status %d, got %v", tt.status, entry["status"])
			}
			if entry["client_ip"] != tt.wantIP {
				t.Errorf("expected client_ip %s, got %v", tt.wantIP, entry["client_ip"])
			}
			if _, ok := entry["duration_ms"]; !ok {
				t.Error("expected duration_ms in log entry")
			}

			id := w.Header().Get("X-Request-ID")
			if id == "" {
				t.Fatal("expected X-Request-ID header")
			}
			if tt.requestID != "" && id != tt.requestID {
				t.Errorf("expected caller id %s to be reused, got %s", tt.requestID, id)
			}
			if entry["request_id"] != id {
				t.Errorf("expected request_id %s, got %v", id, entry["request_id"])
			}
		})
	}
}
