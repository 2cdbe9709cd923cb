package middleware

import (
	"net/http"
	"net/http/httptest"
	"spotifylyrics-go/logcolors"
	"spotifylyrics-go/stats"
	"testing"
)

func TestGetStatusColor(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected string
	}{
		{"lyrics found", http.StatusOK, logcolors.Green},
		{"lyrics not found", http.StatusNotFound, "\033[33m"},
		{"malformed song", http.StatusBadRequest, "\033[33m"},
		{"nothing playing", http.StatusUnprocessableEntity, "\033[33m"},
		{"cache only refusal", http.StatusTooManyRequests, "\033[33m"},
		{"backup unsupported", http.StatusNotImplemented, logcolors.Red},
		{"cache failure", http.StatusInternalServerError, logcolors.Red},
		{"redirect", http.StatusMovedPermanently, logcolors.Cyan},
		{"informational", http.StatusSwitchingProtocols, logcolors.Reset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getStatusColor(tt.code); got != tt.expected {
				t.Errorf("Expected color %q for %d, got %q", tt.expected, tt.code, got)
			}
		})
	}
}

func TestResponseRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := NewResponseRecorder(w)

	if rec.StatusCode != http.StatusOK {
		t.Errorf("Expected default status 200, got %d", rec.StatusCode)
	}

	rec.WriteHeader(http.StatusNotFound)
	rec.Write([]byte(`{"lyrics":`))
	rec.Write([]byte(`"Error: Could not find lyrics."}`))

	if rec.StatusCode != http.StatusNotFound || w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 recorded and forwarded, got %d and %d", rec.StatusCode, w.Code)
	}
	if rec.BodySize != w.Body.Len() {
		t.Errorf("Expected body size %d, got %d", w.Body.Len(), rec.BodySize)
	}
}

func TestLoggingMiddleware_Stats(t *testing.T) {
	s := stats.Get()
	tests := []struct {
		path    string
		status  int
		counter func() int64
	}{
		{"/lyrics", http.StatusOK, s.LyricsRequests.Load},
		{"/lyrics/next", http.StatusNotFound, s.LyricsRequests.Load},
		{"/chords", http.StatusOK, s.ChordsRequests.Load},
		{"/cache", http.StatusInternalServerError, s.Status5xx.Load},
		{"/nowplaying", http.StatusUnprocessableEntity, s.Status4xx.Load},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			requests := s.Requests.Load()
			before := tt.counter()
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			if got := s.Requests.Load() - requests; got != 1 {
				t.Errorf("Expected 1 request counted, got %d", got)
			}
			if got := tt.counter() - before; got != 1 {
				t.Errorf("Expected counter to grow by 1, got %d", got)
			}
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/lyrics", nil))
	if seen == "" {
		t.Fatal("Expected a generated request ID")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}

	first := seen
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/lyrics", nil))
	if seen == first {
		t.Error("Expected a new request ID per request")
	}

	req := httptest.NewRequest("GET", "/lyrics", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("Expected caller supplied ID abc-123, got %q", seen)
	}
}

func TestRequestID_Missing(t *testing.T) {
	if id := RequestID(httptest.NewRequest("GET", "/", nil).Context()); id != "" {
		t.Errorf("Expected empty ID outside the middleware, got %q", id)
	}
}
