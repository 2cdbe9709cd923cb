package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		apiKey     string
		required   bool
		path       string
		header     string
		wantStatus int
	}{
		{"not required", "secret", false, "/lyrics", "", http.StatusOK},
		{"required without configured key", "", true, "/lyrics", "", http.StatusOK},
		{"missing key", "secret", true, "/lyrics", "", http.StatusUnauthorized},
		{"wrong key", "secret", true, "/lyrics", "guess", http.StatusUnauthorized},
		{"valid key", "secret", true, "/lyrics", "secret", http.StatusOK},
		{"exact public path", "secret", true, "/health", "", http.StatusOK},
		{"prefix public path", "secret", true, "/metrics/extra", "", http.StatusOK},
		{"prefix does not match sibling", "secret", true, "/metric", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := APIKeyMiddleware(tt.apiKey, tt.required, []string{"/health", "/metrics*"})(ok)

			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("X-API-Key", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Code == http.StatusUnauthorized && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected JSON error body, got content type %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}
