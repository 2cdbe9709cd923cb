package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"spotifylyrics-go/middleware"
	"testing"

	"golang.org/x/time/rate"
)

func TestAPIResponse_SetCacheStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		expected string
	}{
		{"HIT status", "HIT", "HIT"},
		{"MISS status", "MISS", "MISS"},
		{"BYPASS status", "BYPASS", "BYPASS"},
		{"unset", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/test", nil)

			Respond(w, r).SetCacheStatus(tt.status).JSON(map[string]string{"test": "data"})

			if got := w.Header().Get("X-Cache-Status"); got != tt.expected {
				t.Errorf("Expected X-Cache-Status %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAPIResponse_Headers(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/lyrics", nil)

	Respond(w, r).SetProvider("lrclib").JSON(map[string]string{"lyrics": "la la"})

	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", got)
	}
	if got := w.Header().Get("X-Provider"); got != "lrclib" {
		t.Errorf("Expected X-Provider lrclib, got %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Type"); got != string(middleware.TierNormal) {
		t.Errorf("Expected default X-RateLimit-Type normal, got %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestAPIResponse_TierFromLimiter(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(rate.Limit(0.001), 1, rate.Limit(0.001), 1)
	var tiers []string
	h := middleware.RateLimitMiddleware(limiter, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Respond(w, r).JSON(map[string]string{})
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/lyrics", nil))
		tiers = append(tiers, w.Header().Get("X-RateLimit-Type"))
	}

	if tiers[0] != "normal" || tiers[1] != "cached" {
		t.Errorf("Expected tiers [normal cached], got %v", tiers)
	}
}

func TestAPIResponse_Error(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/lyrics", nil)

	Respond(w, r).SetCacheStatus("MISS").Error(http.StatusNotFound, ErrorResponse{Error: "not found"})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	if got := w.Header().Get("X-Cache-Status"); got != "MISS" {
		t.Errorf("Expected X-Cache-Status MISS, got %q", got)
	}

	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != "not found" {
		t.Errorf("Expected error message, got %q", body.Error)
	}
}
