// internal/api/middleware/auth_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/perfscope/internal/api/response"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		path     string
		provided string
		want     int
		wantCode string
	}{
		{"valid key", "secret-key", "/api/v1/analysis", "secret-key", http.StatusOK, ""},
		{"missing key", "secret-key", "/api/v1/analysis", "", http.StatusUnauthorized, "CONFIG_MISSING"},
		{"wrong key", "secret-key", "/api/v1/analysis", "wrong-key", http.StatusUnauthorized, "CONFIG_INVALID"},
		{"auth disabled", "", "/api/v1/analysis", "", http.StatusOK, ""},
		{"public health", "secret-key", "/api/health", "", http.StatusOK, ""},
		{"public metrics", "secret-key", "/metrics", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := APIKeyAuth(tt.key, "/api/health", "/metrics")(okHandler())

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.provided != "" {
				req.Header.Set(HeaderAPIKey, tt.provided)
			}
			w := httptest.NewRecorder()

			wrapped.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.wantCode == "" {
				return
			}
			var resp response.ErrorResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Error.Code != tt.wantCode {
				t.Errorf("expected %s, got %s", tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestAPIKeyAuth_EmptyPublicPrefixIgnored(t *testing.T) {
	wrapped := APIKeyAuth("secret-key", "")(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/universe", nil)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
